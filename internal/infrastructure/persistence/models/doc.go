// Package models holds the GORM row types behind the repositories. Domain
// types never carry gorm tags; each model converts to and from its
// aggregate with ToDomain and FromDomain.
//
// base.go has the columns shared by every aggregate table, catalog.go the
// categories and products (nutrition as columns), ticket.go tickets with
// their lines and identity.go operator accounts.
package models

package router

import (
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/identity"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/handler"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted under the API base path.
type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Import   *handler.ProductImportHandler
	Shop     *handler.ShopHandler
	Ticket   *handler.TicketHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// RouteOptions carries the per-route guards that depend on configuration.
// Nil guards are skipped.
type RouteOptions struct {
	// AuthLimiter throttles login and refresh harder than the global limiter
	AuthLimiter gin.HandlerFunc
	// ShopLimiter throttles the public kiosk endpoints
	ShopLimiter gin.HandlerFunc
	// MaxImageBytes bounds product image uploads
	MaxImageBytes int64
	// MaxImportBytes bounds catalogue CSV uploads
	MaxImportBytes int64
}

// DomainGroups builds the API route table. Authentication is applied by the
// JWT middleware on the API group; the groups here only add role checks.
//
//	/auth     login and refresh are public, the rest needs a token
//	/shop     public kiosk: sessions, catalog browsing, own tickets
//	/catalog  admin and cashier read, admin writes, both adjust stock
//	/tickets  admin and cashier, delete is admin only
//	/reports  admin only
func DomainGroups(h Handlers, opts RouteOptions) []RouteRegistrar {
	adminOnly := middleware.RequireRole(string(identity.RoleAdmin))
	staff := middleware.RequireRole(string(identity.RoleAdmin), string(identity.RoleCashier))

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", opts.AuthLimiter, h.Auth.Login)
	authRoutes.POST("/refresh", opts.AuthLimiter, h.Auth.RefreshToken)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.GetCurrentUser)
	authRoutes.PUT("/password", h.Auth.ChangePassword)

	shopRoutes := NewDomainGroup("shop", "/shop").Use(opts.ShopLimiter)
	sessions := shopRoutes.Group("sessions", "/sessions")
	sessions.POST("", h.Shop.StartSession)
	sessions.GET("/:id", h.Shop.GetSession)
	sessions.DELETE("/:id", h.Shop.DeleteSession)
	sessions.PUT("/:id/budget", h.Shop.ConfigureBudget)
	sessions.POST("/:id/scan", h.Shop.Scan)
	sessions.POST("/:id/items", h.Shop.AddItem)
	sessions.DELETE("/:id/items", h.Shop.ClearCart)
	sessions.PUT("/:id/items/:product_id", h.Shop.UpdateItem)
	sessions.DELETE("/:id/items/:product_id", h.Shop.RemoveItem)
	sessions.POST("/:id/checkout", h.Shop.Checkout)
	shopRoutes.GET("/products", h.Product.ListPublic)
	shopRoutes.GET("/products/qr/:code", h.Product.GetByQRCode)
	shopRoutes.GET("/products/:id/qr.png", h.Product.QRCodePNG)
	shopRoutes.GET("/categories", h.Category.ListPublic)
	shopRoutes.GET("/tickets/:id", h.Shop.GetTicket)
	shopRoutes.GET("/tickets/:id/pdf", h.Shop.TicketPDF)

	catalogRoutes := NewDomainGroup("catalog", "/catalog").Use(staff)
	categories := catalogRoutes.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.GetByID)
	categories.POST("", adminOnly, h.Category.Create)
	categories.PUT("/:id", adminOnly, h.Category.Update)
	categories.POST("/:id/activate", adminOnly, h.Category.Activate)
	categories.POST("/:id/deactivate", adminOnly, h.Category.Deactivate)
	categories.DELETE("/:id", adminOnly, h.Category.Delete)

	products := catalogRoutes.Group("products", "/products")
	products.GET("", h.Product.List)
	products.GET("/low-stock", h.Product.ListLowStock)
	products.GET("/code/:code", h.Product.GetByCode)
	products.GET("/:id", h.Product.GetByID)
	products.GET("/:id/qr.png", h.Product.QRCodePNG)
	products.GET("/:id/image", h.Product.GetImage)
	products.POST("/:id/stock", h.Product.AdjustStock)
	products.POST("", adminOnly, h.Product.Create)
	products.POST("/labels", adminOnly, h.Product.LabelSheet)
	products.POST("/import", adminOnly, middleware.RouteBodyLimit(opts.MaxImportBytes), h.Import.ImportProducts)
	products.PUT("/:id", adminOnly, h.Product.Update)
	products.PUT("/:id/price", adminOnly, h.Product.UpdatePrice)
	products.PUT("/:id/nutrition", adminOnly, h.Product.SetNutrition)
	products.POST("/:id/activate", adminOnly, h.Product.Activate)
	products.POST("/:id/deactivate", adminOnly, h.Product.Deactivate)
	products.POST("/:id/qr", adminOnly, h.Product.RegenerateQRCode)
	products.POST("/:id/image", adminOnly, middleware.RouteBodyLimit(opts.MaxImageBytes), h.Product.UploadImage)
	products.DELETE("/:id/image", adminOnly, h.Product.DeleteImage)
	products.DELETE("/:id", adminOnly, h.Product.Delete)

	ticketRoutes := NewDomainGroup("tickets", "/tickets").Use(staff)
	ticketRoutes.GET("", h.Ticket.List)
	ticketRoutes.GET("/number/:number", h.Ticket.GetByNumber)
	ticketRoutes.GET("/:id", h.Ticket.GetByID)
	ticketRoutes.GET("/:id/pdf", h.Ticket.PDF)
	ticketRoutes.POST("/:id/cancel", h.Ticket.Cancel)
	ticketRoutes.PUT("/:id/notes", h.Ticket.UpdateNotes)
	ticketRoutes.DELETE("/:id", adminOnly, h.Ticket.Delete)

	reportRoutes := NewDomainGroup("reports", "/reports").Use(adminOnly)
	reportRoutes.GET("/dashboard", h.Report.Dashboard)

	systemRoutes := NewDomainGroup("system", "")
	systemRoutes.GET("/health", h.System.Health)
	systemRoutes.GET("/system/info", adminOnly, h.System.GetSystemInfo)

	return []RouteRegistrar{authRoutes, shopRoutes, catalogRoutes, ticketRoutes, reportRoutes, systemRoutes}
}

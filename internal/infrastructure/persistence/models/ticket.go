package models

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketModel is the persistence model for the Ticket aggregate.
type TicketModel struct {
	AggregateModel
	TicketNumber         string                `gorm:"type:varchar(32);not null;uniqueIndex"`
	SessionID            uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	Status               ticket.TicketStatus   `gorm:"type:varchar(20);not null;default:'issued'"`
	ItemCount            int                   `gorm:"not null"`
	Total                decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	BudgetAmount         decimal.NullDecimal   `gorm:"type:decimal(12,2)"`
	BudgetStatus         shopping.BudgetStatus `gorm:"type:varchar(20);not null;default:'none'"`
	BudgetPercentageUsed decimal.NullDecimal   `gorm:"type:decimal(8,2)"`
	BudgetRemaining      decimal.NullDecimal   `gorm:"type:decimal(12,2)"`
	Notes                string                `gorm:"type:varchar(500)"`
	IssuedAt             time.Time             `gorm:"not null;index"`
	CancelledAt          *time.Time
	CancelReason         string            `gorm:"type:varchar(500)"`
	Items                []TicketItemModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "tickets"
}

// TicketItemModel is the persistence model for a ticket line.
type TicketItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TicketID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (TicketItemModel) TableName() string {
	return "ticket_items"
}

// ToDomain converts the persistence model to a domain Ticket aggregate.
// Items must be preloaded ordered by line_no.
func (m *TicketModel) ToDomain() *ticket.Ticket {
	t := &ticket.Ticket{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.TicketNumber,
		SessionID:         m.SessionID,
		Status:            m.Status,
		ItemCount:         m.ItemCount,
		Total:             m.Total,
		Budget: ticket.BudgetSnapshot{
			Budget:         nullDecimalPtr(m.BudgetAmount),
			Status:         m.BudgetStatus,
			PercentageUsed: nullDecimalPtr(m.BudgetPercentageUsed),
			Remaining:      nullDecimalPtr(m.BudgetRemaining),
		},
		Notes:        m.Notes,
		IssuedAt:     m.IssuedAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
		Items:        make([]ticket.TicketItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		t.Items = append(t.Items, ticket.TicketItem{
			ID:          item.ID,
			TicketID:    item.TicketID,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	return t
}

// FromDomain populates the persistence model from a domain Ticket aggregate.
func (m *TicketModel) FromDomain(t *ticket.Ticket) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TicketNumber = t.Number
	m.SessionID = t.SessionID
	m.Status = t.Status
	m.ItemCount = t.ItemCount
	m.Total = t.Total
	m.BudgetAmount = ptrNullDecimal(t.Budget.Budget)
	m.BudgetStatus = t.Budget.Status
	m.BudgetPercentageUsed = ptrNullDecimal(t.Budget.PercentageUsed)
	m.BudgetRemaining = ptrNullDecimal(t.Budget.Remaining)
	m.Notes = t.Notes
	m.IssuedAt = t.IssuedAt
	m.CancelledAt = t.CancelledAt
	m.CancelReason = t.CancelReason

	m.Items = make([]TicketItemModel, 0, len(t.Items))
	for i, item := range t.Items {
		m.Items = append(m.Items, TicketItemModel{
			ID:          item.ID,
			TicketID:    t.ID,
			LineNo:      i + 1,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
}

// TicketModelFromDomain creates a new persistence model from a domain Ticket aggregate.
func TicketModelFromDomain(t *ticket.Ticket) *TicketModel {
	m := &TicketModel{}
	m.FromDomain(t)
	return m
}

func nullDecimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func ptrNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

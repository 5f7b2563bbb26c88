package ticket

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutRequest closes a shopping session into a ticket
type CheckoutRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// CancelTicketRequest voids a ticket
type CancelTicketRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// UpdateNotesRequest replaces the admin notes of a ticket
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// TicketListFilter represents filter options for the ticket list.
// Dates are calendar days in the store's time zone; To is inclusive.
type TicketListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=issued cancelled"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TicketItemResponse is one receipt line
type TicketItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// BudgetSnapshotResponse is the budget comparison frozen at checkout
type BudgetSnapshotResponse struct {
	Budget         *decimal.Decimal      `json:"budget"`
	Status         shopping.BudgetStatus `json:"status"`
	PercentageUsed *decimal.Decimal      `json:"percentage_used"`
	Remaining      *decimal.Decimal      `json:"remaining"`
}

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID           uuid.UUID              `json:"id"`
	Number       string                 `json:"number"`
	SessionID    uuid.UUID              `json:"session_id"`
	Status       string                 `json:"status"`
	Items        []TicketItemResponse   `json:"items,omitempty"`
	ItemCount    int                    `json:"item_count"`
	Total        decimal.Decimal        `json:"total"`
	Budget       BudgetSnapshotResponse `json:"budget"`
	Notes        string                 `json:"notes"`
	IssuedAt     time.Time              `json:"issued_at"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason string                 `json:"cancel_reason,omitempty"`
	Version      int                    `json:"version"`
}

// ToTicketResponse converts a domain Ticket to TicketResponse
func ToTicketResponse(t *ticket.Ticket) *TicketResponse {
	var items []TicketItemResponse
	if len(t.Items) > 0 {
		items = make([]TicketItemResponse, len(t.Items))
		for i, item := range t.Items {
			items[i] = TicketItemResponse{
				ProductID:   item.ProductID,
				ProductCode: item.ProductCode,
				ProductName: item.ProductName,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
				LineTotal:   item.LineTotal,
			}
		}
	}
	return &TicketResponse{
		ID:        t.ID,
		Number:    t.Number,
		SessionID: t.SessionID,
		Status:    string(t.Status),
		Items:     items,
		ItemCount: t.ItemCount,
		Total:     t.Total,
		Budget: BudgetSnapshotResponse{
			Budget:         t.Budget.Budget,
			Status:         t.Budget.Status,
			PercentageUsed: t.Budget.PercentageUsed,
			Remaining:      t.Budget.Remaining,
		},
		Notes:        t.Notes,
		IssuedAt:     t.IssuedAt,
		CancelledAt:  t.CancelledAt,
		CancelReason: t.CancelReason,
		Version:      t.Version,
	}
}

// ToTicketResponses converts a slice of domain Tickets
func ToTicketResponses(tickets []ticket.Ticket) []TicketResponse {
	responses := make([]TicketResponse, len(tickets))
	for i := range tickets {
		responses[i] = *ToTicketResponse(&tickets[i])
	}
	return responses
}

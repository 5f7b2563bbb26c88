package ticket

import (
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTicket names the ticket aggregate in events
const AggregateTypeTicket = "Ticket"

// Event type constants
const (
	EventTypeTicketIssued    = "TicketIssued"
	EventTypeTicketCancelled = "TicketCancelled"
)

// EventLine is a product quantity carried by ticket events
type EventLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func eventLines(t *Ticket) []EventLine {
	lines := make([]EventLine, 0, len(t.Items))
	for _, item := range t.Items {
		lines = append(lines, EventLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// TicketIssuedEvent is published after a checkout commits
type TicketIssuedEvent struct {
	shared.BaseDomainEvent
	TicketID     uuid.UUID             `json:"ticket_id"`
	Number       string                `json:"number"`
	SessionID    uuid.UUID             `json:"session_id"`
	Total        decimal.Decimal       `json:"total"`
	ItemCount    int                   `json:"item_count"`
	BudgetStatus shopping.BudgetStatus `json:"budget_status"`
	Lines        []EventLine           `json:"lines"`
}

// NewTicketIssuedEvent creates a new TicketIssuedEvent
func NewTicketIssuedEvent(t *Ticket) *TicketIssuedEvent {
	return &TicketIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketIssued, AggregateTypeTicket, t.ID),
		TicketID:        t.ID,
		Number:          t.Number,
		SessionID:       t.SessionID,
		Total:           t.Total,
		ItemCount:       t.ItemCount,
		BudgetStatus:    t.Budget.Status,
		Lines:           eventLines(t),
	}
}

// TicketCancelledEvent is published after a ticket is voided and stock restored
type TicketCancelledEvent struct {
	shared.BaseDomainEvent
	TicketID uuid.UUID       `json:"ticket_id"`
	Number   string          `json:"number"`
	Total    decimal.Decimal `json:"total"`
	Reason   string          `json:"reason"`
	Lines    []EventLine     `json:"lines"`
}

// NewTicketCancelledEvent creates a new TicketCancelledEvent
func NewTicketCancelledEvent(t *Ticket) *TicketCancelledEvent {
	return &TicketCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketCancelled, AggregateTypeTicket, t.ID),
		TicketID:        t.ID,
		Number:          t.Number,
		Total:           t.Total,
		Reason:          t.CancelReason,
		Lines:           eventLines(t),
	}
}

package ticket

import (
	"context"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates issued tickets over a period
type SalesSummary struct {
	TicketCount int64
	Revenue     decimal.Decimal
	ItemsSold   int64
}

// AverageTicket returns revenue per ticket, zero when there are none
func (s SalesSummary) AverageTicket() decimal.Decimal {
	if s.TicketCount == 0 {
		return decimal.Zero
	}
	return s.Revenue.Div(decimal.NewFromInt(s.TicketCount)).Round(2)
}

// DailySales is one day of a sales series
type DailySales struct {
	Date        string
	TicketCount int64
	Revenue     decimal.Decimal
}

// TopProduct is a best seller over a period
type TopProduct struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// Repository defines the interface for ticket persistence.
// Issued-only aggregates ignore cancelled tickets.
type Repository interface {
	// Create inserts a ticket and its items
	Create(ctx context.Context, t *Ticket) error

	// FindByID finds a ticket with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// FindByNumber finds a ticket by its number
	FindByNumber(ctx context.Context, number string) (*Ticket, error)

	// FindAll lists tickets without items.
	// Supported filters: "status", "from" (time.Time), "to" (time.Time, exclusive).
	// Search matches the ticket number.
	FindAll(ctx context.Context, filter shared.Filter) ([]Ticket, error)

	// Count counts tickets matching the filter (pagination ignored)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Update persists status, notes and cancellation fields. A ticket
	// changed since it was read is shared.ErrConcurrencyConflict.
	Update(ctx context.Context, t *Ticket) error

	// Delete removes a ticket and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// LastNumberWithPrefix returns the highest number starting with prefix, or "" if none
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)

	// ExistsByNumber checks if a ticket number is taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// ExistsBySession checks if a shopping session was already checked out
	ExistsBySession(ctx context.Context, sessionID uuid.UUID) (bool, error)

	// SalesSummary aggregates issued tickets issued in [from, to)
	SalesSummary(ctx context.Context, from, to time.Time) (SalesSummary, error)

	// DailySales groups issued tickets in [from, to) by calendar day in loc
	DailySales(ctx context.Context, from, to time.Time, loc *time.Location) ([]DailySales, error)

	// TopProducts returns the best sellers by quantity in [from, to)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)

	// BudgetBreakdown counts issued tickets in [from, to) per budget status
	BudgetBreakdown(ctx context.Context, from, to time.Time) (map[shopping.BudgetStatus]int64, error)
}

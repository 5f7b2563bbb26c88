package ticket

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusIssued    TicketStatus = "issued"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// IsValid checks if the status is known
func (s TicketStatus) IsValid() bool {
	return s == TicketStatusIssued || s == TicketStatusCancelled
}

// Ticket errors
var (
	ErrNoItems           = shared.NewDomainError("TICKET_NO_ITEMS", "Ticket must have at least one item")
	ErrAlreadyCancelled  = shared.NewDomainError("TICKET_ALREADY_CANCELLED", "Ticket is already cancelled")
	ErrNotCancelled      = shared.NewDomainError("TICKET_NOT_CANCELLED", "Only cancelled tickets can be deleted")
	ErrNotesTooLong      = shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	ErrDuplicateNumber   = shared.NewDomainError("TICKET_NUMBER_TAKEN", "Ticket number is already in use")
	ErrSessionCheckedOut = shared.NewDomainError("SESSION_ALREADY_CHECKED_OUT", "Shopping session was already checked out")
)

const maxNotesLength = 500

// LineInput is a priced product line used to build a ticket
type LineInput struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// TicketItem is a frozen receipt line
type TicketItem struct {
	ID          uuid.UUID
	TicketID    uuid.UUID
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// BudgetSnapshot freezes the budget comparison at checkout time
type BudgetSnapshot struct {
	Budget         *decimal.Decimal
	Status         shopping.BudgetStatus
	PercentageUsed *decimal.Decimal
	Remaining      *decimal.Decimal
}

// Ticket is the receipt of a completed shopping session
type Ticket struct {
	shared.BaseAggregateRoot
	Number       string
	SessionID    uuid.UUID
	Status       TicketStatus
	Items        []TicketItem
	ItemCount    int
	Total        decimal.Decimal
	Budget       BudgetSnapshot
	Notes        string
	IssuedAt     time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewTicket creates an issued ticket from priced lines and the session budget
func NewTicket(number string, sessionID uuid.UUID, lines []LineInput, budget *decimal.Decimal, notes string, issuedAt time.Time) (*Ticket, error) {
	if len(lines) == 0 {
		return nil, ErrNoItems
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_TICKET_NUMBER", "Ticket number cannot be empty")
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, ErrNotesTooLong
	}

	t := &Ticket{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SessionID:         sessionID,
		Status:            TicketStatusIssued,
		Items:             make([]TicketItem, 0, len(lines)),
		Total:             decimal.Zero,
		Notes:             notes,
		IssuedAt:          issuedAt,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		t.Items = append(t.Items, TicketItem{
			ID:          uuid.New(),
			TicketID:    t.ID,
			ProductID:   line.ProductID,
			ProductCode: line.ProductCode,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
		t.Total = t.Total.Add(lineTotal)
		t.ItemCount += line.Quantity
	}

	summary := shopping.EvaluateBudget(t.Total, budget)
	t.Budget = BudgetSnapshot{
		Budget:         summary.Budget,
		Status:         summary.Status,
		PercentageUsed: summary.PercentageUsed,
		Remaining:      summary.Remaining,
	}

	t.AddDomainEvent(NewTicketIssuedEvent(t))
	return t, nil
}

// Cancel voids the ticket; stock restoration is the caller's job
func (t *Ticket) Cancel(reason string, now time.Time) error {
	if t.Status == TicketStatusCancelled {
		return ErrAlreadyCancelled
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > maxNotesLength {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot exceed 500 characters")
	}
	t.Status = TicketStatusCancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	t.IncrementVersion()
	t.AddDomainEvent(NewTicketCancelledEvent(t))
	return nil
}

// UpdateNotes replaces the admin notes
func (t *Ticket) UpdateNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	t.Notes = notes
	t.IncrementVersion()
	return nil
}

// CanDelete reports whether the ticket may be removed
func (t *Ticket) CanDelete() error {
	if t.Status != TicketStatusCancelled {
		return ErrNotCancelled
	}
	return nil
}

// IsCancelled returns true for voided tickets
func (t *Ticket) IsCancelled() bool {
	return t.Status == TicketStatusCancelled
}

package ticket

import (
	"context"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
)

// ReceiptRenderer prints a ticket on the receipt roll
type ReceiptRenderer interface {
	TicketReceipt(ctx context.Context, t *ticket.Ticket) ([]byte, error)
}

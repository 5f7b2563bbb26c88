package ticket

import (
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func lines() []LineInput {
	return []LineInput{
		{ProductID: uuid.New(), ProductCode: "PAN-001", ProductName: "Pan francés", UnitPrice: decimal.RequireFromString("0.30"), Quantity: 10},
		{ProductID: uuid.New(), ProductCode: "LECHE-1L", ProductName: "Leche", UnitPrice: decimal.RequireFromString("5.50"), Quantity: 2},
	}
}

func TestNewTicket(t *testing.T) {
	t.Run("computes totals and budget snapshot", func(t *testing.T) {
		budget := decimal.NewFromInt(20)
		tk, err := NewTicket("TK-20260314-0001", uuid.New(), lines(), &budget, " para llevar ", issuedAt)
		require.NoError(t, err)

		assert.Equal(t, TicketStatusIssued, tk.Status)
		assert.Equal(t, "14", tk.Total.String())
		assert.Equal(t, 12, tk.ItemCount)
		assert.Equal(t, "para llevar", tk.Notes)
		require.Len(t, tk.Items, 2)
		assert.Equal(t, "3", tk.Items[0].LineTotal.String())
		assert.Equal(t, tk.ID, tk.Items[0].TicketID)

		assert.Equal(t, shopping.BudgetStatusWarning, tk.Budget.Status)
		require.NotNil(t, tk.Budget.PercentageUsed)
		assert.Equal(t, "70", tk.Budget.PercentageUsed.String())
		assert.Equal(t, "6", tk.Budget.Remaining.String())
	})

	t.Run("without budget", func(t *testing.T) {
		tk, err := NewTicket("TK-20260314-0002", uuid.New(), lines(), nil, "", issuedAt)
		require.NoError(t, err)
		assert.Equal(t, shopping.BudgetStatusNone, tk.Budget.Status)
		assert.Nil(t, tk.Budget.Budget)
		assert.Nil(t, tk.Budget.PercentageUsed)
	})

	t.Run("publishes TicketIssued", func(t *testing.T) {
		tk, err := NewTicket("TK-20260314-0003", uuid.New(), lines(), nil, "", issuedAt)
		require.NoError(t, err)

		events := tk.GetDomainEvents()
		require.Len(t, events, 1)
		issued, ok := events[0].(*TicketIssuedEvent)
		require.True(t, ok)
		assert.Equal(t, "TK-20260314-0003", issued.Number)
		assert.Len(t, issued.Lines, 2)
	})

	t.Run("requires items", func(t *testing.T) {
		_, err := NewTicket("TK-20260314-0004", uuid.New(), nil, nil, "", issuedAt)
		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("requires number", func(t *testing.T) {
		_, err := NewTicket(" ", uuid.New(), lines(), nil, "", issuedAt)
		assert.Error(t, err)
	})
}

func TestTicket_Cancel(t *testing.T) {
	tk, err := NewTicket("TK-20260314-0001", uuid.New(), lines(), nil, "", issuedAt)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	assert.ErrorIs(t, tk.CanDelete(), ErrNotCancelled)

	cancelAt := issuedAt.Add(time.Hour)
	require.NoError(t, tk.Cancel("cliente devolvió", cancelAt))
	assert.True(t, tk.IsCancelled())
	assert.Equal(t, &cancelAt, tk.CancelledAt)
	assert.Equal(t, "cliente devolvió", tk.CancelReason)
	assert.NoError(t, tk.CanDelete())

	events := tk.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeTicketCancelled, events[0].EventType())

	assert.ErrorIs(t, tk.Cancel("again", cancelAt), ErrAlreadyCancelled)
}

func TestTicket_UpdateNotes(t *testing.T) {
	tk, err := NewTicket("TK-20260314-0001", uuid.New(), lines(), nil, "", issuedAt)
	require.NoError(t, err)

	require.NoError(t, tk.UpdateNotes("pagó con yape"))
	assert.Equal(t, "pagó con yape", tk.Notes)
	assert.Equal(t, 2, tk.GetVersion())

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'x'
	}
	assert.ErrorIs(t, tk.UpdateNotes(string(long)), ErrNotesTooLong)
}

func TestSalesSummary_AverageTicket(t *testing.T) {
	assert.True(t, SalesSummary{}.AverageTicket().IsZero())
	s := SalesSummary{TicketCount: 3, Revenue: decimal.NewFromInt(10)}
	assert.Equal(t, "3.33", s.AverageTicket().String())
}

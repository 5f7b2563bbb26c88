package shopping

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func snapshot(price string) ProductSnapshot {
	return ProductSnapshot{ID: uuid.New(), Code: "PAN-001", Name: "Pan", UnitPrice: dec(price)}
}

func TestNewCart(t *testing.T) {
	cart := NewCart(t0, 0)

	assert.NotEqual(t, uuid.Nil, cart.ID)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, DefaultBudgetWindow, cart.BudgetWindow)
	assert.True(t, cart.RequiresBudgetPrompt(t0), "undecided budget requires prompt")
	assert.Nil(t, cart.BudgetExpiresAt())
	assert.Equal(t, BudgetStatusNone, cart.Budget().Status)
}

func TestCart_ConfigureBudget(t *testing.T) {
	t.Run("sets budget and opens window", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		require.NoError(t, cart.ConfigureBudget(decPtr("25.50"), t0))

		assert.True(t, cart.BudgetAmount.Equal(dec("25.5")))
		require.NotNil(t, cart.BudgetExpiresAt())
		assert.Equal(t, t0.Add(time.Hour), *cart.BudgetExpiresAt())
		assert.False(t, cart.RequiresBudgetPrompt(t0.Add(59*time.Minute)))
		assert.True(t, cart.RequiresBudgetPrompt(t0.Add(time.Hour)))
	})

	t.Run("no budget is a decision too", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		require.NoError(t, cart.ConfigureBudget(nil, t0))

		assert.Nil(t, cart.BudgetAmount)
		assert.False(t, cart.RequiresBudgetPrompt(t0.Add(time.Minute)))
		assert.Equal(t, BudgetStatusNone, cart.Budget().Status)
	})

	t.Run("reconfigure restarts window and keeps items", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		require.NoError(t, cart.ConfigureBudget(decPtr("10"), t0))
		require.NoError(t, cart.AddItem(snapshot("2"), 3, t0))

		later := t0.Add(2 * time.Hour)
		require.True(t, cart.RequiresBudgetPrompt(later))
		require.NoError(t, cart.ConfigureBudget(decPtr("20"), later))

		assert.False(t, cart.RequiresBudgetPrompt(later))
		assert.Equal(t, 3, cart.ItemCount())
	})

	t.Run("rejects non-positive budgets", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		assert.ErrorIs(t, cart.ConfigureBudget(decPtr("0"), t0), ErrInvalidBudget)
		assert.ErrorIs(t, cart.ConfigureBudget(decPtr("-5"), t0), ErrInvalidBudget)
		assert.ErrorIs(t, cart.ConfigureBudget(decPtr("0.001"), t0), ErrInvalidBudget)
		assert.False(t, cart.BudgetConfigured)
	})
}

func TestCart_Items(t *testing.T) {
	t.Run("merges quantities on the same product", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		pan := snapshot("0.30")

		require.NoError(t, cart.AddItem(pan, 5, t0))
		require.NoError(t, cart.AddItem(pan, 5, t0))

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 10, cart.Items[0].Quantity)
		assert.True(t, cart.Total().Equal(dec("3")))
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		a, b := snapshot("1"), snapshot("2")
		require.NoError(t, cart.AddItem(a, 1, t0))
		require.NoError(t, cart.AddItem(b, 1, t0))
		require.NoError(t, cart.AddItem(a, 1, t0))

		assert.Equal(t, a.ID, cart.Items[0].ProductID)
		assert.Equal(t, b.ID, cart.Items[1].ProductID)
	})

	t.Run("enforces line quantity bounds", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		p := snapshot("1")
		assert.ErrorIs(t, cart.AddItem(p, 0, t0), ErrInvalidQuantity)
		assert.ErrorIs(t, cart.AddItem(p, MaxLineQuantity+1, t0), ErrInvalidQuantity)
		require.NoError(t, cart.AddItem(p, MaxLineQuantity, t0))
		assert.ErrorIs(t, cart.AddItem(p, 1, t0), ErrInvalidQuantity)
	})

	t.Run("set quantity and remove", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		p := snapshot("1.50")
		require.NoError(t, cart.AddItem(p, 2, t0))

		require.NoError(t, cart.SetQuantity(p.ID, 4, t0))
		item, ok := cart.Item(p.ID)
		require.True(t, ok)
		assert.True(t, item.LineTotal().Equal(dec("6")))

		require.NoError(t, cart.SetQuantity(p.ID, 0, t0))
		assert.True(t, cart.IsEmpty())

		assert.ErrorIs(t, cart.SetQuantity(p.ID, 1, t0), ErrItemNotInCart)
		assert.ErrorIs(t, cart.RemoveItem(p.ID, t0), ErrItemNotInCart)
		assert.ErrorIs(t, cart.SetQuantity(p.ID, -1, t0), ErrInvalidQuantity)
	})

	t.Run("clear keeps budget", func(t *testing.T) {
		cart := NewCart(t0, time.Hour)
		require.NoError(t, cart.ConfigureBudget(decPtr("10"), t0))
		require.NoError(t, cart.AddItem(snapshot("4"), 2, t0))

		cart.Clear(t0)
		assert.True(t, cart.IsEmpty())
		assert.True(t, cart.Total().IsZero())
		assert.NotNil(t, cart.BudgetAmount)
	})
}

func TestCart_Budget(t *testing.T) {
	cart := NewCart(t0, time.Hour)
	require.NoError(t, cart.ConfigureBudget(decPtr("20"), t0))
	p := snapshot("5")

	require.NoError(t, cart.AddItem(p, 2, t0))
	assert.Equal(t, BudgetStatusHealthy, cart.Budget().Status)

	require.NoError(t, cart.AddItem(p, 1, t0))
	assert.Equal(t, BudgetStatusWarning, cart.Budget().Status)

	require.NoError(t, cart.AddItem(p, 2, t0))
	summary := cart.Budget()
	assert.Equal(t, BudgetStatusExceeded, summary.Status)
	assert.True(t, summary.Remaining.Equal(dec("-5")))
	assert.True(t, summary.PercentageUsed.Equal(dec("125")))
}

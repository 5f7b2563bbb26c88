package shopping

import (
	"context"
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	svc      *CartService
	products *MockProductRepository
	clock    time.Time
}

func setupCartService(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{
		products: new(MockProductRepository),
		clock:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewCartService(cache.NewInMemoryCartStore(24*time.Hour), nil, f.products, CartServiceConfig{BudgetWindow: time.Hour}, nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func newShelfProduct(t *testing.T, code string, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Producto "+code, "unidad", decimal.RequireFromString(price))
	require.NoError(t, err)
	p.Stock = stock
	p.PullDomainEvents()
	return p
}

func budgetOf(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCartService_StartSession(t *testing.T) {
	ctx := context.Background()

	t.Run("without decision requires prompt", func(t *testing.T) {
		f := setupCartService(t)
		resp, err := f.svc.StartSession(ctx, StartSessionRequest{})
		require.NoError(t, err)
		assert.True(t, resp.RequiresBudgetPrompt)
		assert.Nil(t, resp.BudgetExpiresAt)
		assert.Equal(t, shopping.BudgetStatusNone, resp.Budget.Status)
	})

	t.Run("with budget", func(t *testing.T) {
		f := setupCartService(t)
		resp, err := f.svc.StartSession(ctx, StartSessionRequest{Budget: budgetOf("50")})
		require.NoError(t, err)
		assert.False(t, resp.RequiresBudgetPrompt)
		require.NotNil(t, resp.BudgetExpiresAt)
		assert.Equal(t, f.clock.Add(time.Hour), *resp.BudgetExpiresAt)
		assert.Equal(t, shopping.BudgetStatusHealthy, resp.Budget.Status)
	})

	t.Run("skip budget", func(t *testing.T) {
		f := setupCartService(t)
		resp, err := f.svc.StartSession(ctx, StartSessionRequest{SkipBudget: true})
		require.NoError(t, err)
		assert.False(t, resp.RequiresBudgetPrompt)
		assert.Nil(t, resp.Budget.Budget)
	})

	t.Run("rejects non-positive budget", func(t *testing.T) {
		f := setupCartService(t)
		_, err := f.svc.StartSession(ctx, StartSessionRequest{Budget: budgetOf("0")})
		assert.ErrorIs(t, err, shopping.ErrInvalidBudget)
	})
}

func TestCartService_ScanProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and merges lines and tracks the budget", func(t *testing.T) {
		f := setupCartService(t)
		session, err := f.svc.StartSession(ctx, StartSessionRequest{Budget: budgetOf("10")})
		require.NoError(t, err)

		bread := newShelfProduct(t, "PAN-001", "2.50", 20)
		f.products.On("FindByQRCode", mock.Anything, bread.QRCode).Return(bread, nil)

		resp, err := f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: " " + bread.QRCode})
		require.NoError(t, err)
		assert.Equal(t, bread.ID, resp.Product.ID)
		assert.Equal(t, 1, resp.Cart.ItemCount)
		assert.Equal(t, shopping.BudgetStatusHealthy, resp.Cart.Budget.Status)

		resp, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: bread.QRCode, Quantity: 2})
		require.NoError(t, err)
		require.Len(t, resp.Cart.Items, 1)
		assert.Equal(t, 3, resp.Cart.Items[0].Quantity)
		assert.True(t, resp.Cart.Total.Equal(decimal.RequireFromString("7.50")))
		assert.Equal(t, shopping.BudgetStatusWarning, resp.Cart.Budget.Status)
		assert.True(t, resp.Cart.Budget.PercentageUsed.Equal(decimal.NewFromInt(75)))

		resp, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: bread.QRCode, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, shopping.BudgetStatusExceeded, resp.Cart.Budget.Status)
		assert.True(t, resp.Cart.Budget.Remaining.Equal(decimal.RequireFromString("-2.50")))
	})

	t.Run("budget window elapsed", func(t *testing.T) {
		f := setupCartService(t)
		session, err := f.svc.StartSession(ctx, StartSessionRequest{Budget: budgetOf("10")})
		require.NoError(t, err)

		f.clock = f.clock.Add(time.Hour)
		_, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: "PMP-000000000000"})
		assert.ErrorIs(t, err, shopping.ErrBudgetPromptRequired)
		f.products.AssertNotCalled(t, "FindByQRCode", mock.Anything, mock.Anything)

		resp, err := f.svc.ConfigureBudget(ctx, session.SessionID, ConfigureBudgetRequest{})
		require.NoError(t, err)
		assert.False(t, resp.RequiresBudgetPrompt)
		assert.Equal(t, shopping.BudgetStatusNone, resp.Budget.Status)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := setupCartService(t)
		session, err := f.svc.StartSession(ctx, StartSessionRequest{SkipBudget: true})
		require.NoError(t, err)
		f.products.On("FindByQRCode", mock.Anything, "PMP-FFFFFFFFFFFF").Return(nil, shared.ErrNotFound)

		_, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: "pmp-ffffffffffff"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stock limit counts what is already in the cart", func(t *testing.T) {
		f := setupCartService(t)
		session, err := f.svc.StartSession(ctx, StartSessionRequest{SkipBudget: true})
		require.NoError(t, err)

		cake := newShelfProduct(t, "TOR-001", "45.00", 2)
		f.products.On("FindByQRCode", mock.Anything, cake.QRCode).Return(cake, nil)

		_, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: cake.QRCode, Quantity: 2})
		require.NoError(t, err)

		_, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: cake.QRCode})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		cart, err := f.svc.GetSession(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, cart.ItemCount)
	})

	t.Run("inactive product", func(t *testing.T) {
		f := setupCartService(t)
		session, err := f.svc.StartSession(ctx, StartSessionRequest{SkipBudget: true})
		require.NoError(t, err)

		old := newShelfProduct(t, "OLD-001", "1.00", 5)
		require.NoError(t, old.Deactivate())
		f.products.On("FindByQRCode", mock.Anything, old.QRCode).Return(old, nil)

		_, err = f.svc.ScanProduct(ctx, session.SessionID, ScanRequest{QRCode: old.QRCode})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := setupCartService(t)
		_, err := f.svc.ScanProduct(ctx, uuid.New(), ScanRequest{QRCode: "PMP-000000000000"})
		assert.ErrorIs(t, err, shopping.ErrSessionNotFound)
	})
}

func TestCartService_ItemEditing(t *testing.T) {
	ctx := context.Background()
	f := setupCartService(t)

	session, err := f.svc.StartSession(ctx, StartSessionRequest{SkipBudget: true})
	require.NoError(t, err)

	milk := newShelfProduct(t, "LEC-001", "4.20", 10)
	bread := newShelfProduct(t, "PAN-002", "0.40", 100)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.products.On("FindByID", mock.Anything, bread.ID).Return(bread, nil)

	_, err = f.svc.AddItem(ctx, session.SessionID, AddItemRequest{ProductID: milk.ID})
	require.NoError(t, err)
	resp, err := f.svc.AddItem(ctx, session.SessionID, AddItemRequest{ProductID: bread.ID, Quantity: 10})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, milk.ID, resp.Items[0].ProductID)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("8.20")))

	t.Run("quantity above stock", func(t *testing.T) {
		_, err := f.svc.UpdateItemQuantity(ctx, session.SessionID, milk.ID, UpdateQuantityRequest{Quantity: 11})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("set quantity", func(t *testing.T) {
		resp, err := f.svc.UpdateItemQuantity(ctx, session.SessionID, milk.ID, UpdateQuantityRequest{Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 13, resp.ItemCount)
	})

	t.Run("zero removes line", func(t *testing.T) {
		resp, err := f.svc.UpdateItemQuantity(ctx, session.SessionID, bread.ID, UpdateQuantityRequest{Quantity: 0})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, milk.ID, resp.Items[0].ProductID)
	})

	t.Run("remove missing line", func(t *testing.T) {
		_, err := f.svc.RemoveItem(ctx, session.SessionID, bread.ID)
		assert.ErrorIs(t, err, shopping.ErrItemNotInCart)
	})

	t.Run("clear keeps budget decision", func(t *testing.T) {
		resp, err := f.svc.ClearCart(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.False(t, resp.RequiresBudgetPrompt)
	})

	t.Run("delete session", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteSession(ctx, session.SessionID))
		_, err := f.svc.GetSession(ctx, session.SessionID)
		assert.ErrorIs(t, err, shopping.ErrSessionNotFound)
		assert.ErrorIs(t, f.svc.DeleteSession(ctx, session.SessionID), shopping.ErrSessionNotFound)
	})
}

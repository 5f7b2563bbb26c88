package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTicketRepository mocks the aggregate queries of ticket.Repository.
// Other methods panic through the nil embedded interface.
type MockTicketRepository struct {
	mock.Mock
	ticket.Repository
}

func (m *MockTicketRepository) SalesSummary(ctx context.Context, from, to time.Time) (ticket.SalesSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(ticket.SalesSummary), args.Error(1)
}

func (m *MockTicketRepository) DailySales(ctx context.Context, from, to time.Time, loc *time.Location) ([]ticket.DailySales, error) {
	args := m.Called(ctx, from, to, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.DailySales), args.Error(1)
}

func (m *MockTicketRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ticket.TopProduct, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.TopProduct), args.Error(1)
}

func (m *MockTicketRepository) BudgetBreakdown(ctx context.Context, from, to time.Time) (map[shopping.BudgetStatus]int64, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shopping.BudgetStatus]int64), args.Error(1)
}

// MockProductRepository mocks the counting queries of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
	catalog.ProductRepository
}

func (m *MockProductRepository) CountByStatus(ctx context.Context, status catalog.ProductStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var lima = time.FixedZone("America/Lima", -5*3600)

func TestDashboardService_Dashboard(t *testing.T) {
	// 02:00 UTC on the 15th is still the 14th in Lima
	now := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)
	todayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, lima)
	tomorrow := time.Date(2026, 3, 15, 0, 0, 0, 0, lima)
	weekStart := time.Date(2026, 3, 8, 0, 0, 0, 0, lima)
	breadID := uuid.New()

	tickets := new(MockTicketRepository)
	tickets.On("SalesSummary", mock.Anything, todayStart, tomorrow).Return(ticket.SalesSummary{
		TicketCount: 4,
		Revenue:     decimal.RequireFromString("50.00"),
		ItemsSold:   11,
	}, nil)
	tickets.On("DailySales", mock.Anything, weekStart, tomorrow, lima).Return([]ticket.DailySales{
		{Date: "2026-03-08", TicketCount: 2, Revenue: decimal.RequireFromString("20.5")},
		{Date: "2026-03-14", TicketCount: 4, Revenue: decimal.RequireFromString("50")},
	}, nil)
	tickets.On("TopProducts", mock.Anything, todayStart, tomorrow, 5).Return([]ticket.TopProduct{
		{ProductID: breadID, ProductCode: "PAN-001", ProductName: "Pan francés", Quantity: 8, Revenue: decimal.RequireFromString("2.40")},
	}, nil)
	tickets.On("BudgetBreakdown", mock.Anything, todayStart, tomorrow).Return(map[shopping.BudgetStatus]int64{
		shopping.BudgetStatusNone:     1,
		shopping.BudgetStatusHealthy:  2,
		shopping.BudgetStatusExceeded: 1,
	}, nil)

	products := new(MockProductRepository)
	products.On("CountByStatus", mock.Anything, catalog.ProductStatusActive).Return(int64(30), nil)
	products.On("CountByStatus", mock.Anything, catalog.ProductStatusInactive).Return(int64(5), nil)
	products.On("CountLowStock", mock.Anything).Return(int64(3), nil)

	svc := NewDashboardService(tickets, products, lima, nil)
	resp, err := svc.Dashboard(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", resp.Today.Date)
	assert.Equal(t, int64(4), resp.Today.TicketCount)
	assert.Equal(t, "50.00", resp.Today.Revenue.StringFixed(2))
	assert.Equal(t, "12.50", resp.Today.AverageTicket.StringFixed(2))
	assert.Equal(t, int64(11), resp.Today.ItemsSold)
	assert.Len(t, resp.LastWeek, 2)
	assert.Equal(t, ProductCounts{Total: 35, Active: 30, LowStock: 3}, resp.Products)
	require.Len(t, resp.TopProducts, 1)
	assert.Equal(t, breadID, resp.TopProducts[0].ProductID)
	assert.Equal(t, BudgetBreakdown{None: 1, Healthy: 2, Exceeded: 1}, resp.Budgets)

	tickets.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestDashboardService_Dashboard_QueryFails(t *testing.T) {
	tickets := new(MockTicketRepository)
	tickets.On("SalesSummary", mock.Anything, mock.Anything, mock.Anything).Return(ticket.SalesSummary{}, errors.New("db down"))
	tickets.On("DailySales", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]ticket.DailySales{}, nil)
	tickets.On("TopProducts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]ticket.TopProduct{}, nil)
	tickets.On("BudgetBreakdown", mock.Anything, mock.Anything, mock.Anything).Return(map[shopping.BudgetStatus]int64{}, nil)

	products := new(MockProductRepository)
	products.On("CountByStatus", mock.Anything, mock.Anything).Return(int64(0), nil)
	products.On("CountLowStock", mock.Anything).Return(int64(0), nil)

	resp, err := NewDashboardService(tickets, products, lima, nil).Dashboard(context.Background(), time.Now())

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to build dashboard")
}

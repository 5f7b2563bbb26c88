package report

import (
	"context"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardDays = 7
	topProducts   = 5
)

// DashboardService builds the admin dashboard
type DashboardService struct {
	ticketRepo  ticket.Repository
	productRepo catalog.ProductRepository
	location    *time.Location
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	ticketRepo ticket.Repository,
	productRepo catalog.ProductRepository,
	location *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		ticketRepo:  ticketRepo,
		productRepo: productRepo,
		location:    location,
		logger:      logger,
	}
}

// Dashboard collects today's figures, the last seven days and catalog
// counts. Days are cut at midnight in the store's time zone.
func (s *DashboardService) Dashboard(ctx context.Context, now time.Time) (resp *DashboardResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard")
	defer telemetry.EndSpan(span, &err)

	local := now.In(s.location)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	tomorrow := todayStart.AddDate(0, 0, 1)
	weekStart := todayStart.AddDate(0, 0, -(dashboardDays - 1))

	var (
		summary  ticket.SalesSummary
		days     []ticket.DailySales
		top      []ticket.TopProduct
		budgets  map[shopping.BudgetStatus]int64
		counts   ProductCounts
		inactive int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.ticketRepo.SalesSummary(gctx, todayStart, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		days, err = s.ticketRepo.DailySales(gctx, weekStart, tomorrow, s.location)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.ticketRepo.TopProducts(gctx, todayStart, tomorrow, topProducts)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.ticketRepo.BudgetBreakdown(gctx, todayStart, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		counts.Active, err = s.productRepo.CountByStatus(gctx, catalog.ProductStatusActive)
		return err
	})
	g.Go(func() (err error) {
		inactive, err = s.productRepo.CountByStatus(gctx, catalog.ProductStatusInactive)
		return err
	})
	g.Go(func() (err error) {
		counts.LowStock, err = s.productRepo.CountLowStock(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to build dashboard")
	}
	counts.Total = counts.Active + inactive

	return &DashboardResponse{
		GeneratedAt: now,
		Today: TodaySummary{
			Date:          todayStart.Format("2006-01-02"),
			TicketCount:   summary.TicketCount,
			Revenue:       summary.Revenue.Round(2),
			ItemsSold:     summary.ItemsSold,
			AverageTicket: summary.AverageTicket(),
		},
		LastWeek:    toDailySalesItems(days),
		Products:    counts,
		TopProducts: toTopProductItems(top),
		Budgets: BudgetBreakdown{
			None:     budgets[shopping.BudgetStatusNone],
			Healthy:  budgets[shopping.BudgetStatusHealthy],
			Warning:  budgets[shopping.BudgetStatusWarning],
			Exceeded: budgets[shopping.BudgetStatusExceeded],
		},
	}, nil
}

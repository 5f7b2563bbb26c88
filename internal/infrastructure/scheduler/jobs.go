package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"go.uber.org/zap"
)

// Sweeper evicts expired in-process entries and reports how many went
type Sweeper interface {
	Sweep(now time.Time) int
}

// SweepJob evicts expired sessions and revoked tokens held in memory
type SweepJob struct {
	sweepers map[string]Sweeper
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweepJob creates a sweep job over the named sweepers. Nil entries are skipped.
func NewSweepJob(logger *zap.Logger, sweepers map[string]Sweeper) *SweepJob {
	active := make(map[string]Sweeper, len(sweepers))
	for name, s := range sweepers {
		if s != nil {
			active[name] = s
		}
	}
	return &SweepJob{sweepers: active, logger: logger, now: time.Now}
}

// Name returns the job name
func (j *SweepJob) Name() string { return "memory-sweep" }

// Run sweeps every store
func (j *SweepJob) Run(ctx context.Context) error {
	now := j.now()
	for name, s := range j.sweepers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n := s.Sweep(now); n > 0 {
			j.logger.Info("Expired entries evicted", zap.String("store", name), zap.Int("count", n))
		}
	}
	return nil
}

// Len returns the number of sweepers
func (j *SweepJob) Len() int { return len(j.sweepers) }

// SalesSource is the slice of the ticket repository the summary needs
type SalesSource interface {
	SalesSummary(ctx context.Context, from, to time.Time) (ticket.SalesSummary, error)
	BudgetBreakdown(ctx context.Context, from, to time.Time) (map[shopping.BudgetStatus]int64, error)
}

// DailySummaryJob logs the store day's sales close
type DailySummaryJob struct {
	sales  SalesSource
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewDailySummaryJob creates the job; days are cut at midnight in loc
func NewDailySummaryJob(sales SalesSource, loc *time.Location, logger *zap.Logger) *DailySummaryJob {
	if loc == nil {
		loc = time.Local
	}
	return &DailySummaryJob{sales: sales, loc: loc, logger: logger, now: time.Now}
}

// Name returns the job name
func (j *DailySummaryJob) Name() string { return "daily-sales-summary" }

// Run summarizes the current store day
func (j *DailySummaryJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)
	to := from.AddDate(0, 0, 1)

	summary, err := j.sales.SalesSummary(ctx, from, to)
	if err != nil {
		return fmt.Errorf("sales summary: %w", err)
	}
	breakdown, err := j.sales.BudgetBreakdown(ctx, from, to)
	if err != nil {
		return fmt.Errorf("budget breakdown: %w", err)
	}

	j.logger.Info("Daily sales close",
		zap.String("date", from.Format("2006-01-02")),
		zap.Int64("tickets", summary.TicketCount),
		zap.String("revenue", summary.Revenue.StringFixed(2)),
		zap.String("average_ticket", summary.AverageTicket().StringFixed(2)),
		zap.Int64("items_sold", summary.ItemsSold),
		zap.Int64("budget_none", breakdown[shopping.BudgetStatusNone]),
		zap.Int64("budget_healthy", breakdown[shopping.BudgetStatusHealthy]),
		zap.Int64("budget_warning", breakdown[shopping.BudgetStatusWarning]),
		zap.Int64("budget_exceeded", breakdown[shopping.BudgetStatusExceeded]),
	)
	return nil
}

package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when SalesMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// SalesMetrics records checkout, scan and rendering activity.
// It satisfies event.SalesRecorder.
type SalesMetrics struct {
	ticketsIssued    metric.Int64Counter
	ticketsCancelled metric.Int64Counter
	revenue          metric.Float64Counter
	refunded         metric.Float64Counter
	ticketItems      metric.Float64Histogram
	scans            metric.Int64Counter
	lowStock         metric.Int64Counter
	renderDuration   metric.Float64Histogram
}

// NewSalesMetrics registers the sales instruments on meter.
func NewSalesMetrics(meter metric.Meter) (*SalesMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m    SalesMetrics
		errs [8]error
	)
	m.ticketsIssued, errs[0] = meter.Int64Counter("pimpos_tickets_issued_total",
		metric.WithDescription("Tickets issued at checkout"), metric.WithUnit("{ticket}"))
	m.ticketsCancelled, errs[1] = meter.Int64Counter("pimpos_tickets_cancelled_total",
		metric.WithDescription("Tickets cancelled by an administrator"), metric.WithUnit("{ticket}"))
	m.revenue, errs[2] = meter.Float64Counter("pimpos_revenue_total",
		metric.WithDescription("Sum of issued ticket totals"), metric.WithUnit("{currency}"))
	m.refunded, errs[3] = meter.Float64Counter("pimpos_cancelled_amount_total",
		metric.WithDescription("Sum of cancelled ticket totals"), metric.WithUnit("{currency}"))
	m.ticketItems, errs[4] = meter.Float64Histogram("pimpos_ticket_items",
		metric.WithDescription("Line items per issued ticket"), metric.WithUnit("{item}"),
		metric.WithExplicitBucketBoundaries(TicketSizeBuckets...))
	m.scans, errs[5] = meter.Int64Counter("pimpos_scans_total",
		metric.WithDescription("QR and code scans by outcome"), metric.WithUnit("{scan}"))
	m.lowStock, errs[6] = meter.Int64Counter("pimpos_low_stock_total",
		metric.WithDescription("Products that dropped to the low stock threshold"), metric.WithUnit("{event}"))
	m.renderDuration, errs[7] = meter.Float64Histogram("pimpos_pdf_render_duration_seconds",
		metric.WithDescription("Time spent rendering receipts and label sheets"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RenderDurationBuckets...))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordTicketIssued counts a completed checkout.
func (m *SalesMetrics) RecordTicketIssued(ctx context.Context, total decimal.Decimal, items int, budgetStatus string) {
	status := metric.WithAttributes(AttrBudgetStatus.String(budgetStatus))
	m.ticketsIssued.Add(ctx, 1, status)
	if amount := total.InexactFloat64(); amount > 0 {
		m.revenue.Add(ctx, amount, status)
	}
	m.ticketItems.Record(ctx, float64(items))
}

// RecordTicketCancelled counts a cancellation.
func (m *SalesMetrics) RecordTicketCancelled(ctx context.Context, total decimal.Decimal) {
	m.ticketsCancelled.Add(ctx, 1)
	if amount := total.InexactFloat64(); amount > 0 {
		m.refunded.Add(ctx, amount)
	}
}

// RecordLowStock counts a product crossing its low stock threshold.
func (m *SalesMetrics) RecordLowStock(ctx context.Context, productCode string) {
	m.lowStock.Add(ctx, 1, metric.WithAttributes(AttrProductCode.String(productCode)))
}

// RecordScan counts a scan attempt; outcome is "added", "not_found",
// "out_of_stock" or "budget_required".
func (m *SalesMetrics) RecordScan(ctx context.Context, outcome string) {
	m.scans.Add(ctx, 1, metric.WithAttributes(AttrScanOutcome.String(outcome)))
}

// RecordRender observes how long a PDF took to render.
func (m *SalesMetrics) RecordRender(ctx context.Context, document string, d time.Duration) {
	m.renderDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrDocument.String(document)))
}

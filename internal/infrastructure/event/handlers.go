package event

import (
	"context"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesRecorder receives sales facts, typically an OpenTelemetry meter wrapper
type SalesRecorder interface {
	RecordTicketIssued(ctx context.Context, total decimal.Decimal, items int, budgetStatus string)
	RecordTicketCancelled(ctx context.Context, total decimal.Decimal)
	RecordLowStock(ctx context.Context, productCode string)
}

// SalesMetricsHandler forwards ticket and stock events to a SalesRecorder
type SalesMetricsHandler struct {
	recorder SalesRecorder
}

// NewSalesMetricsHandler creates the handler
func NewSalesMetricsHandler(recorder SalesRecorder) *SalesMetricsHandler {
	return &SalesMetricsHandler{recorder: recorder}
}

// EventTypes returns the handled events
func (h *SalesMetricsHandler) EventTypes() []string {
	return []string{
		ticket.EventTypeTicketIssued,
		ticket.EventTypeTicketCancelled,
		catalog.EventTypeProductStockLow,
	}
}

// Handle records the event
func (h *SalesMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ticket.TicketIssuedEvent:
		h.recorder.RecordTicketIssued(ctx, e.Total, e.ItemCount, string(e.BudgetStatus))
	case *ticket.TicketCancelledEvent:
		h.recorder.RecordTicketCancelled(ctx, e.Total)
	case *catalog.ProductStockLowEvent:
		h.recorder.RecordLowStock(ctx, e.Code)
	}
	return nil
}

// AuditLogHandler writes business events to the log
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates the handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("events")}
}

// EventTypes returns nil so the handler sees every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its most useful fields
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *ticket.TicketIssuedEvent:
		h.logger.Info("ticket issued", append(fields,
			zap.String("number", e.Number),
			zap.String("total", e.Total.StringFixed(2)),
			zap.Int("items", e.ItemCount),
			zap.String("budget_status", string(e.BudgetStatus)),
		)...)
	case *ticket.TicketCancelledEvent:
		h.logger.Info("ticket cancelled", append(fields,
			zap.String("number", e.Number),
			zap.String("reason", e.Reason),
		)...)
	case *catalog.ProductStockLowEvent:
		h.logger.Warn("product stock low", append(fields,
			zap.String("code", e.Code),
			zap.Int("stock", e.Stock),
			zap.Int("min_stock", e.MinStock),
		)...)
	default:
		h.logger.Debug("domain event", fields...)
	}
	return nil
}

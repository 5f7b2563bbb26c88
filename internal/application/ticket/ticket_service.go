package ticket

import (
	"context"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPrintingDisabled is returned when no PDF renderer is configured
var ErrPrintingDisabled = shared.NewDomainError("PRINTING_DISABLED", "PDF printing is not enabled")

// TicketService handles ticket queries and back-office changes
type TicketService struct {
	ticketRepo  ticket.Repository
	productRepo catalog.ProductRepository
	txManager   shared.TransactionManager
	eventBus    shared.EventPublisher
	receipts    ReceiptRenderer
	location    *time.Location
	metrics     *telemetry.SalesMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewTicketService creates a new TicketService. receipts may be nil when
// printing is disabled.
func NewTicketService(
	ticketRepo ticket.Repository,
	productRepo catalog.ProductRepository,
	txManager shared.TransactionManager,
	eventBus shared.EventPublisher,
	receipts ReceiptRenderer,
	location *time.Location,
	logger *zap.Logger,
) *TicketService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		ticketRepo:  ticketRepo,
		productRepo: productRepo,
		txManager:   txManager,
		eventBus:    eventBus,
		receipts:    receipts,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMetrics enables receipt render metrics
func (s *TicketService) SetMetrics(m *telemetry.SalesMetrics) {
	s.metrics = m
}

// GetByID retrieves a ticket with its items
func (s *TicketService) GetByID(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	t, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTicketResponse(t), nil
}

// GetByNumber retrieves a ticket by its number
func (s *TicketService) GetByNumber(ctx context.Context, number string) (*TicketResponse, error) {
	t, err := s.ticketRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return ToTicketResponse(t), nil
}

// List retrieves tickets, newest first by default
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]TicketResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "issued_at"
		domainFilter.OrderDir = "desc"
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.From != "" {
		from, err := s.parseDay(filter.From)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["from"] = from
	}
	if filter.To != "" {
		to, err := s.parseDay(filter.To)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["to"] = to.AddDate(0, 0, 1)
	}

	tickets, err := s.ticketRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ticketRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTicketResponses(tickets), total, nil
}

// Cancel voids a ticket and puts its items back on the shelf
func (s *TicketService) Cancel(ctx context.Context, id uuid.UUID, req CancelTicketRequest) (resp *TicketResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", "cancel")
	defer telemetry.EndSpan(span, &err)

	var cancelled *ticket.Ticket
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		t, err := s.ticketRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := t.Cancel(req.Reason, s.now()); err != nil {
			return err
		}
		// the versioned update fails for a concurrent cancel before any restock
		if err := s.ticketRepo.Update(txCtx, t); err != nil {
			return err
		}
		for _, item := range t.Items {
			if err := s.productRepo.IncreaseStock(txCtx, item.ProductID, item.Quantity); err != nil {
				if shared.IsNotFound(err) {
					// product deleted since the sale; nothing to restock
					continue
				}
				return err
			}
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if events := cancelled.PullDomainEvents(); s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Error("Failed to publish ticket events", zap.Error(err))
		}
	}

	s.logger.Info("Ticket cancelled",
		zap.String("ticket_number", cancelled.Number),
		zap.String("reason", cancelled.CancelReason))
	return ToTicketResponse(cancelled), nil
}

// UpdateNotes replaces a ticket's admin notes
func (s *TicketService) UpdateNotes(ctx context.Context, id uuid.UUID, req UpdateNotesRequest) (*TicketResponse, error) {
	t, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.UpdateNotes(req.Notes); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return ToTicketResponse(t), nil
}

// Delete removes a cancelled ticket
func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := t.CanDelete(); err != nil {
		return err
	}
	return s.ticketRepo.Delete(ctx, id)
}

// ReceiptPDF renders the ticket on the receipt roll.
// Returns the ticket number for the download file name.
func (s *TicketService) ReceiptPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.receipts == nil {
		return nil, "", ErrPrintingDisabled
	}
	t, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	pdf, err := s.receipts.TicketReceipt(ctx, t)
	if err != nil {
		return nil, "", err
	}
	if s.metrics != nil {
		s.metrics.RecordRender(ctx, "receipt", time.Since(start))
	}
	return pdf, t.Number, nil
}

func (s *TicketService) parseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, s.location)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultMaxNumberRetries bounds checkout attempts that lose a ticket number race
const DefaultMaxNumberRetries = 5

// ErrNumberExhausted is returned when every checkout attempt collided on the ticket number
var ErrNumberExhausted = shared.NewDomainError("TICKET_NUMBER_CONFLICT", "Could not allocate a ticket number, please retry")

// CheckoutConfig configures CheckoutService
type CheckoutConfig struct {
	NumberPrefix     string
	MaxNumberRetries int
	Location         *time.Location // store time zone for the number date
}

// CheckoutService turns a shopping session into a persisted ticket
type CheckoutService struct {
	carts       shopping.CartStore
	locks       *shopping.SessionLocks
	productRepo catalog.ProductRepository
	ticketRepo  ticket.Repository
	txManager   shared.TransactionManager
	eventBus    shared.EventPublisher
	config      CheckoutConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new CheckoutService. locks must be shared
// with the cart service; eventBus may be nil.
func NewCheckoutService(
	carts shopping.CartStore,
	locks *shopping.SessionLocks,
	productRepo catalog.ProductRepository,
	ticketRepo ticket.Repository,
	txManager shared.TransactionManager,
	eventBus shared.EventPublisher,
	cfg CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = ticket.DefaultNumberPrefix
	}
	if cfg.MaxNumberRetries <= 0 {
		cfg.MaxNumberRetries = DefaultMaxNumberRetries
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = shopping.NewSessionLocks()
	}
	return &CheckoutService{
		carts:       carts,
		locks:       locks,
		productRepo: productRepo,
		ticketRepo:  ticketRepo,
		txManager:   txManager,
		eventBus:    eventBus,
		config:      cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Checkout prices the cart at current catalog prices, takes the stock,
// numbers and stores the ticket in one transaction, then closes the session.
// It holds the session lock throughout, and a session yields at most one
// ticket: a repeated checkout is ticket.ErrSessionCheckedOut.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID uuid.UUID, req CheckoutRequest) (resp *TicketResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "confirm",
		attribute.String("session.id", sessionID.String()))
	defer telemetry.EndSpan(span, &err)

	defer s.locks.Lock(sessionID)()

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shopping.ErrSessionNotFound) && s.checkedOut(ctx, sessionID) {
			return nil, ticket.ErrSessionCheckedOut
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, shopping.ErrCartEmpty
	}

	var (
		issued   *ticket.Ticket
		lowStock []shared.DomainEvent
	)
	for attempt := 1; ; attempt++ {
		issued, lowStock, err = s.issue(ctx, cart, req.Notes)
		if err == nil {
			break
		}
		if !errors.Is(err, ticket.ErrDuplicateNumber) {
			return nil, err
		}
		if s.checkedOut(ctx, sessionID) {
			s.logger.Warn("Session already has a ticket",
				zap.String("session_id", sessionID.String()))
			return nil, ticket.ErrSessionCheckedOut
		}
		if attempt >= s.config.MaxNumberRetries {
			s.logger.Error("Ticket number allocation exhausted",
				zap.String("session_id", sessionID.String()),
				zap.Int("attempts", attempt))
			return nil, ErrNumberExhausted
		}
		s.logger.Warn("Ticket number taken, retrying checkout",
			zap.String("session_id", sessionID.String()),
			zap.Int("attempt", attempt))
	}

	span.SetAttributes(attribute.String("ticket.number", issued.Number))

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to delete checked out session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	}

	s.publish(ctx, append(issued.PullDomainEvents(), lowStock...))

	s.logger.Info("Ticket issued",
		zap.String("ticket_number", issued.Number),
		zap.String("total", issued.Total.StringFixed(2)),
		zap.Int("item_count", issued.ItemCount),
		zap.String("budget_status", string(issued.Budget.Status)))

	return ToTicketResponse(issued), nil
}

// issue runs one checkout attempt inside a transaction
func (s *CheckoutService) issue(ctx context.Context, cart *shopping.Cart, notes string) (*ticket.Ticket, []shared.DomainEvent, error) {
	var (
		issued   *ticket.Ticket
		lowStock []shared.DomainEvent
	)

	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		lines := make([]ticket.LineInput, 0, len(cart.Items))
		lowStock = lowStock[:0]

		for _, item := range cart.Items {
			product, err := s.productRepo.FindByID(txCtx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("%s is no longer available", item.Name))
				}
				return err
			}
			if !product.IsActive() {
				return shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("%s is no longer available", product.Name))
			}

			if err := s.productRepo.DecreaseStock(txCtx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Insufficient stock for %s", product.Name))
				}
				return err
			}

			product.Stock -= item.Quantity
			if product.IsLowStock() {
				lowStock = append(lowStock, catalog.NewProductStockLowEvent(product))
			}

			lines = append(lines, ticket.LineInput{
				ProductID:   product.ID,
				ProductCode: product.Code,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
			})
		}

		now := s.now()
		prefix := ticket.NumberPrefix(now.In(s.config.Location), s.config.NumberPrefix)
		last, err := s.ticketRepo.LastNumberWithPrefix(txCtx, prefix)
		if err != nil {
			return err
		}
		number, err := ticket.NextNumber(prefix, last)
		if err != nil {
			return err
		}

		t, err := ticket.NewTicket(number, cart.ID, lines, cart.BudgetAmount, notes, now)
		if err != nil {
			return err
		}
		if err := s.ticketRepo.Create(txCtx, t); err != nil {
			return err
		}
		issued = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return issued, lowStock, nil
}

// checkedOut reports whether the session already has a ticket. Lookup
// failures count as no.
func (s *CheckoutService) checkedOut(ctx context.Context, sessionID uuid.UUID) bool {
	exists, err := s.ticketRepo.ExistsBySession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Failed to look up session ticket",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		return false
	}
	return exists
}

func (s *CheckoutService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish checkout events", zap.Error(err))
	}
}

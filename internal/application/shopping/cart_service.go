package shopping

import (
	"context"
	"errors"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Scan outcomes reported to metrics
const (
	ScanAdded          = "added"
	ScanNotFound       = "not_found"
	ScanOutOfStock     = "out_of_stock"
	ScanBudgetRequired = "budget_required"
	ScanUnavailable    = "unavailable"
)

// Cart service errors
var (
	ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for sale")
	ErrUnknownQRCode      = shared.NewDomainError("NOT_FOUND", "No product matches the scanned code")
)

// CartServiceConfig configures CartService
type CartServiceConfig struct {
	BudgetWindow time.Duration
}

// CartService runs the shopper's cart and budget state machine on top of
// the session store
type CartService struct {
	store       shopping.CartStore
	productRepo catalog.ProductRepository
	config      CartServiceConfig
	metrics     *telemetry.SalesMetrics
	logger      *zap.Logger
	now         func() time.Time
	locks       *shopping.SessionLocks
}

// NewCartService creates a new CartService. locks must be the set the
// checkout service holds; nil gives the service a private set.
func NewCartService(
	store shopping.CartStore,
	locks *shopping.SessionLocks,
	productRepo catalog.ProductRepository,
	cfg CartServiceConfig,
	logger *zap.Logger,
) *CartService {
	if cfg.BudgetWindow <= 0 {
		cfg.BudgetWindow = shopping.DefaultBudgetWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = shopping.NewSessionLocks()
	}
	return &CartService{
		store:       store,
		productRepo: productRepo,
		config:      cfg,
		logger:      logger,
		now:         time.Now,
		locks:       locks,
	}
}

// SetMetrics enables scan metrics
func (s *CartService) SetMetrics(m *telemetry.SalesMetrics) {
	s.metrics = m
}

// StartSession opens a new shopping session
func (s *CartService) StartSession(ctx context.Context, req StartSessionRequest) (*CartResponse, error) {
	now := s.now()
	cart := shopping.NewCart(now, s.config.BudgetWindow)

	switch {
	case req.Budget != nil:
		if err := cart.ConfigureBudget(req.Budget, now); err != nil {
			return nil, err
		}
	case req.SkipBudget:
		if err := cart.ConfigureBudget(nil, now); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info("Shopping session started",
		zap.String("session_id", cart.ID.String()),
		zap.Bool("has_budget", cart.BudgetAmount != nil))
	return ToCartResponse(cart, now), nil
}

// GetSession returns the cart summary and extends the session lifetime
func (s *CartService) GetSession(ctx context.Context, sessionID uuid.UUID) (*CartResponse, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, sessionID); err != nil && !errors.Is(err, shopping.ErrSessionNotFound) {
		s.logger.Warn("Failed to extend session", zap.String("session_id", sessionID.String()), zap.Error(err))
	}
	return ToCartResponse(cart, s.now()), nil
}

// ConfigureBudget sets or clears the budget and restarts the budget window
func (s *CartService) ConfigureBudget(ctx context.Context, sessionID uuid.UUID, req ConfigureBudgetRequest) (*CartResponse, error) {
	return s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		return cart.ConfigureBudget(req.Budget, now)
	})
}

// ScanProduct resolves a QR token and adds the product to the cart
func (s *CartService) ScanProduct(ctx context.Context, sessionID uuid.UUID, req ScanRequest) (resp *ScanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "scan",
		attribute.String("session.id", sessionID.String()))
	defer telemetry.EndSpan(span, &err)

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var scanned *catalog.Product
	cart, err := s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		if cart.RequiresBudgetPrompt(now) {
			s.recordScan(ctx, ScanBudgetRequired)
			return shopping.ErrBudgetPromptRequired
		}

		product, err := s.productRepo.FindByQRCode(ctx, catalog.NormalizeQRCode(req.QRCode))
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.recordScan(ctx, ScanNotFound)
				return ErrUnknownQRCode
			}
			return err
		}
		if err := s.addProduct(ctx, cart, product, quantity, now); err != nil {
			return err
		}
		scanned = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordScan(ctx, ScanAdded)
	span.SetAttributes(attribute.String("product.code", scanned.Code))
	return &ScanResponse{Product: toScannedProduct(scanned), Cart: cart}, nil
}

// AddItem adds a product chosen by ID
func (s *CartService) AddItem(ctx context.Context, sessionID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		if cart.RequiresBudgetPrompt(now) {
			return shopping.ErrBudgetPromptRequired
		}
		product, err := s.productRepo.FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		return s.addProduct(ctx, cart, product, quantity, now)
	})
}

// UpdateItemQuantity sets the quantity of a line; zero removes it
func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID, productID uuid.UUID, req UpdateQuantityRequest) (*CartResponse, error) {
	return s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		if req.Quantity > 0 {
			if _, ok := cart.Item(productID); !ok {
				return shopping.ErrItemNotInCart
			}
			product, err := s.productRepo.FindByID(ctx, productID)
			if err != nil {
				return err
			}
			if !product.HasStock(req.Quantity) {
				return shared.ErrInsufficientStock
			}
		}
		return cart.SetQuantity(productID, req.Quantity, now)
	})
}

// RemoveItem drops a product line
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID uuid.UUID) (*CartResponse, error) {
	return s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		return cart.RemoveItem(productID, now)
	})
}

// ClearCart removes every line and keeps the budget decision
func (s *CartService) ClearCart(ctx context.Context, sessionID uuid.UUID) (*CartResponse, error) {
	return s.update(ctx, sessionID, func(cart *shopping.Cart, now time.Time) error {
		cart.Clear(now)
		return nil
	})
}

// DeleteSession abandons the session
func (s *CartService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	defer s.locks.Lock(sessionID)()

	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *CartService) addProduct(ctx context.Context, cart *shopping.Cart, product *catalog.Product, quantity int, now time.Time) error {
	if !product.IsActive() {
		s.recordScan(ctx, ScanUnavailable)
		return ErrProductUnavailable
	}

	wanted := quantity
	if line, ok := cart.Item(product.ID); ok {
		wanted += line.Quantity
	}
	if !product.HasStock(wanted) {
		s.recordScan(ctx, ScanOutOfStock)
		return shared.ErrInsufficientStock
	}

	return cart.AddItem(shopping.ProductSnapshot{
		ID:        product.ID,
		Code:      product.Code,
		Name:      product.Name,
		UnitPrice: product.Price,
	}, quantity, now)
}

// update loads the cart, applies fn and saves it under the session lock
func (s *CartService) update(ctx context.Context, sessionID uuid.UUID, fn func(*shopping.Cart, time.Time) error) (*CartResponse, error) {
	defer s.locks.Lock(sessionID)()

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := fn(cart, now); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return ToCartResponse(cart, now), nil
}

func (s *CartService) recordScan(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordScan(ctx, outcome)
	}
}

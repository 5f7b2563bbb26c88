package catalog

import (
	"context"
	"errors"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrProductUnavailable hides inactive products from shopper lookups
var ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for sale")

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. eventBus may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Unit, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.Unit, req.CategoryID, req.MinStock); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial stock cannot be negative")
	}
	product.Stock = req.Stock
	if req.Nutrition != nil {
		if err := product.SetNutrition(req.Nutrition.ToDomain()); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	return ToProductResponse(product), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByCode retrieves a product by its code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByQRCode resolves a scanned QR token for shoppers.
// Inactive products are reported as unavailable.
func (s *ProductService) GetByQRCode(ctx context.Context, token string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByQRCode(ctx, catalog.NormalizeQRCode(token))
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, ErrProductUnavailable
	}
	return ToProductResponse(product), nil
}

// List retrieves products matching the filter
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.LowStock {
		domainFilter.Filters["low_stock"] = true
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// ListLowStock returns active products at or under their minimum stock,
// lowest stock first
func (s *ProductService) ListLowStock(ctx context.Context, page, pageSize int) ([]ProductResponse, int64, error) {
	return s.List(ctx, ProductListFilter{
		Status:   string(catalog.ProductStatusActive),
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "stock",
		OrderDir: "asc",
	})
}

// Update updates a product's descriptive fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Update(req.Name, req.Description, req.Unit, req.CategoryID, req.MinStock)
	})
}

// UpdatePrice changes a product's selling price
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.SetPrice(req.Price)
	})
}

// AdjustStock applies a manual stock correction
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	resp, err := s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.AdjustStock(req.Delta)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.Int("stock", resp.Stock),
		zap.String("reason", req.Reason))
	return resp, nil
}

// SetNutrition replaces the nutrition facts; a nil request clears them
func (s *ProductService) SetNutrition(ctx context.Context, id uuid.UUID, req *NutritionRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		if req == nil {
			return p.SetNutrition(nil)
		}
		return p.SetNutrition(req.ToDomain())
	})
}

// Activate puts a product back on sale
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).Activate)
}

// Deactivate removes a product from sale
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).Deactivate)
}

// RegenerateQRCode issues a new QR token, invalidating printed labels
func (s *ProductService) RegenerateQRCode(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.RegenerateQRCode()
		return nil
	})
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)
	return ToProductResponse(product), nil
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

// publish forwards pending product events. Failures are logged only.
func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}

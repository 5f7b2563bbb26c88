package catalog

import (
	"context"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its code (case-insensitive)
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByQRCode finds a product by its QR token
	FindByQRCode(ctx context.Context, token string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter.
	// Supported filters: "status", "category_id", "low_stock" (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter (pagination ignored)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts products with the given status
	CountByStatus(ctx context.Context, status ProductStatus) (int64, error)

	// CountLowStock counts active products at or below their minimum stock
	CountLowStock(ctx context.Context) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode checks if a product code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// DecreaseStock atomically subtracts quantity if enough stock remains.
	// Returns shared.ErrInsufficientStock otherwise.
	DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) error

	// IncreaseStock atomically adds quantity
	IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

package catalog

import (
	"context"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByName finds a category by name, case-insensitively
	FindByName(ctx context.Context, name string) (*Category, error)

	// FindAll finds all categories matching the filter.
	// Supported filters: "is_active" (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// Count counts categories matching the filter (pagination ignored)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName checks whether another category already uses the name
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// HasProducts checks if any product references the category
	HasProducts(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

package persistence

import (
	"context"
	"strings"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository stores product categories
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

// FindByName matches case-insensitively; the CSV import resolves category
// columns through it
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	return r.findOne(r.byName(ctx, name))
}

// FindAll returns one page ordered by filter.OrderBy, sort_order by default.
// Filters: is_active.
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	query := r.where(conn(ctx, r.db), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CategoryModel
	if err := categorySort.apply(query, filter.OrderBy, filter.OrderDir).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.where(conn(ctx, r.db).Model(&models.CategoryModel{}), filter).Count(&n).Error
	return n, err
}

// Save inserts or version-guards an update; a taken name is
// shared.ErrAlreadyExists
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	db := conn(ctx, r.db)

	var err error
	if category.IsNew() {
		err = duplicate(db.Create(model).Error)
	} else {
		err = updateVersioned(db, &models.CategoryModel{}, category.ID, category.StoredVersion(), model.UpdateColumns())
	}
	if err != nil {
		return err
	}
	category.MarkStored()
	return nil
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return touched(conn(ctx, r.db).Delete(&models.CategoryModel{}, "id = ?", id))
}

// ExistsByName reports whether a category other than excludeID uses name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.byName(ctx, name).Model(&models.CategoryModel{})
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var n int64
	err := query.Count(&n).Error
	return n > 0, err
}

// HasProducts reports whether any product, active or not, references the category
func (r *GormCategoryRepository) HasProducts(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("category_id = ?", categoryID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *GormCategoryRepository) byName(ctx context.Context, name string) *gorm.DB {
	return conn(ctx, r.db).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
}

func (r *GormCategoryRepository) where(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

func (r *GormCategoryRepository) findOne(query *gorm.DB) (*catalog.Category, error) {
	var row models.CategoryModel
	if err := query.First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

// likePattern builds a case-insensitive LIKE pattern; callers compare against LOWER(column)
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

package persistence

import (
	"context"
	"strings"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/identity"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository stores operator accounts
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return duplicate(conn(ctx, r.db).Create(models.UserModelFromDomain(user)).Error)
}

// Update writes every column but created_at, so cleared lock fields are
// stored as NULL
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	row := models.UserModelFromDomain(user)
	return touched(conn(ctx, r.db).Model(row).Select("*").Omit("created_at").Updates(row))
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

// FindByUsername matches case-insensitively, ignoring surrounding spaces
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.findOne(r.byUsername(ctx, username))
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.byUsername(ctx, username).Model(&models.UserModel{}).Count(&n).Error
	return n > 0, err
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.UserModel{}).Count(&n).Error
	return n, err
}

func (r *GormUserRepository) byUsername(ctx context.Context, username string) *gorm.DB {
	return conn(ctx, r.db).Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
}

func (r *GormUserRepository) findOne(query *gorm.DB) (*identity.User, error) {
	var row models.UserModel
	if err := query.First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

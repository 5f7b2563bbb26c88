package persistence

import (
	"errors"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// duplicate maps a unique violation to shared.ErrAlreadyExists. It needs
// TranslateError on the gorm config.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// touched reports shared.ErrNotFound for a write that matched no row
func touched(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// updateVersioned writes columns to the row with id only while it still
// holds version stored. A row that moved on is
// shared.ErrConcurrencyConflict, a missing one shared.ErrNotFound.
func updateVersioned(db *gorm.DB, model any, id uuid.UUID, stored int, columns map[string]any) error {
	result := db.Model(model).
		Where("id = ? AND version = ?", id, stored).
		Updates(columns)
	if result.Error != nil {
		return duplicate(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

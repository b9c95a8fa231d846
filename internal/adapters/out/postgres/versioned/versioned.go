// Package versioned implements the conditional writes every aggregate repository relies on.
// A row is written only while it still carries the version the aggregate was loaded with.
package versioned

import (
	"context"

	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Update overwrites the columns of dto, associations excluded, on the row with id and
// version. dto must already carry the next version. When no row matched, Update reports
// ObjectNotFoundError if the row is gone and ConcurrentModificationError otherwise.
func Update(ctx context.Context, db *gorm.DB, dto any, id uuid.UUID, version int, paramName string) error {
	result := db.WithContext(ctx).
		Model(dto).
		Select("*").
		Omit("id", clause.Associations).
		Where("version = ?", version).
		Updates(dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(dto).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError(paramName, id.String())
	}
	return errs.NewConcurrentModificationError(paramName, id.String())
}

// Delete removes the row with id and version, reporting like Update when none matched.
func Delete(ctx context.Context, db *gorm.DB, dto any, id uuid.UUID, version int, paramName string) error {
	result := db.WithContext(ctx).
		Where("id = ? AND version = ?", id, version).
		Delete(dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(dto).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError(paramName, id.String())
	}
	return errs.NewConcurrentModificationError(paramName, id.String())
}

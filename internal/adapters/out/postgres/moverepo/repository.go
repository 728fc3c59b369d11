package moverepo

import (
	"context"

	"warehouse/internal/core/domain/model/movement"

	"gorm.io/gorm"
)

// GormMoveRepository implements ports.MoveRepository using GORM.
type GormMoveRepository struct {
	db *gorm.DB
}

func NewGormMoveRepository(db *gorm.DB) *GormMoveRepository {
	return &GormMoveRepository{db: db}
}

func (r *GormMoveRepository) Add(ctx context.Context, record *movement.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	return r.db.WithContext(ctx).Create(&dto).Error
}

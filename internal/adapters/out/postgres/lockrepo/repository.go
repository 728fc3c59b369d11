// Package lockrepo stores the warehouse-wide inventory lock.
package lockrepo

import (
	"context"
	"errors"
	"time"

	"warehouse/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockDTO is the row of the inventory_locks table. A missing row means unlocked.
type LockDTO struct {
	WarehouseID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Locked      bool      `gorm:"not null"`
	Reason      string    `gorm:"type:text;not null"`
	UpdatedBy   string    `gorm:"type:varchar(128);not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (LockDTO) TableName() string {
	return "inventory_locks"
}

// GormLockRepository reads and writes inventory locks. It implements
// ports.LockChecker; Set is used by the admin tooling that runs counts.
type GormLockRepository struct {
	db *gorm.DB
}

func NewGormLockRepository(db *gorm.DB) *GormLockRepository {
	return &GormLockRepository{db: db}
}

func (r *GormLockRepository) IsLocked(ctx context.Context, warehouseID kernel.UUID) (bool, error) {
	var dto LockDTO
	err := r.db.WithContext(ctx).First(&dto, "warehouse_id = ?", warehouseID.Raw()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return dto.Locked, nil
}

// Set turns the lock of a warehouse on or off.
func (r *GormLockRepository) Set(ctx context.Context, warehouseID kernel.UUID, locked bool, reason string, actor kernel.Actor) error {
	if err := errors.Join(warehouseID.Validate(), actor.Validate()); err != nil {
		return err
	}

	dto := LockDTO{
		WarehouseID: warehouseID.Raw(),
		Locked:      locked,
		Reason:      reason,
		UpdatedBy:   actor.ID(),
		UpdatedAt:   time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"locked", "reason", "updated_by", "updated_at"}),
		}).
		Create(&dto).Error
}

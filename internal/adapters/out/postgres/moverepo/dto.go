// Package moverepo appends unit move records.
package moverepo

import (
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"

	"github.com/google/uuid"
)

// MoveDTO is the row of the unit_moves table.
type MoveDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_unit_moves_unit_moved_at"`
	FromCellID  *uuid.UUID `gorm:"type:uuid"`
	ToCellID    uuid.UUID  `gorm:"type:uuid;not null"`
	ToStatus    string     `gorm:"type:varchar(16);not null"`
	Source      string     `gorm:"type:varchar(32);not null"`
	Actor       string     `gorm:"type:varchar(128);not null"`
	MovedAt     time.Time  `gorm:"not null;index:idx_unit_moves_unit_moved_at"`
}

func (MoveDTO) TableName() string {
	return "unit_moves"
}

func fromDomain(r *movement.Record) MoveDTO {
	return MoveDTO{
		ID:          r.ID().Raw(),
		WarehouseID: r.WarehouseID().Raw(),
		UnitID:      r.UnitID().Raw(),
		FromCellID:  kernel.RawPtr(r.FromCellID()),
		ToCellID:    r.ToCellID().Raw(),
		ToStatus:    r.ToStatus().String(),
		Source:      r.Source().String(),
		Actor:       r.Actor(),
		MovedAt:     r.At(),
	}
}

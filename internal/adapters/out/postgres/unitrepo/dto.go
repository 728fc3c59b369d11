// Package unitrepo persists units and their current location.
package unitrepo

import (
	"time"

	"warehouse/internal/adapters/out/postgres/pgutil"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"

	"github.com/google/uuid"
)

// UnitDTO is the row of the units table. Status mirrors the type of the
// referenced cell and is empty while the unit has no cell.
type UnitDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_units_warehouse_barcode"`
	Barcode     string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_units_warehouse_barcode"`
	CellID      *uuid.UUID `gorm:"type:uuid;index"`
	Status      string     `gorm:"type:varchar(16);not null;default:''"`
	Meta        []byte     `gorm:"type:jsonb;not null;default:'{}'"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (UnitDTO) TableName() string {
	return "units"
}

func fromDomain(u *unit.Unit) (UnitDTO, error) {
	meta, err := pgutil.MarshalMeta(u.Meta())
	if err != nil {
		return UnitDTO{}, err
	}

	return UnitDTO{
		ID:          u.ID().Raw(),
		WarehouseID: u.WarehouseID().Raw(),
		Barcode:     u.Barcode().String(),
		CellID:      kernel.RawPtr(u.CellID()),
		Status:      u.Status().String(),
		Meta:        meta,
	}, nil
}

func toDomain(dto UnitDTO) (*unit.Unit, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}
	warehouseID, err := kernel.UUIDFromRaw(dto.WarehouseID)
	if err != nil {
		return nil, err
	}
	cellID, err := kernel.UUIDPtrFromRaw(dto.CellID)
	if err != nil {
		return nil, err
	}
	status, err := unit.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	meta, err := pgutil.UnmarshalMeta(dto.Meta)
	if err != nil {
		return nil, err
	}

	return unit.RestoreUnit(id, warehouseID, kernel.Barcode(dto.Barcode), cellID, status, meta)
}

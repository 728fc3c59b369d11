// Package cellrepo persists cells.
package cellrepo

import (
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CellDTO is the row of the cells table. Codes are unique per warehouse.
type CellDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cells_warehouse_code"`
	Code        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cells_warehouse_code"`
	Type        string    `gorm:"type:varchar(16);not null;index"`
	IsActive    bool      `gorm:"not null"`
	Blocked     bool      `gorm:"not null"`
}

func (CellDTO) TableName() string {
	return "cells"
}

func fromDomain(c *cell.Cell) CellDTO {
	return CellDTO{
		ID:          c.ID().Raw(),
		WarehouseID: c.WarehouseID().Raw(),
		Code:        c.Code(),
		Type:        c.Type().String(),
		IsActive:    c.IsActive(),
		Blocked:     c.IsBlocked(),
	}
}

// toDomain rejects rows whose type is not a known cell type.
func toDomain(dto CellDTO) (*cell.Cell, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}
	warehouseID, err := kernel.UUIDFromRaw(dto.WarehouseID)
	if err != nil {
		return nil, err
	}
	cellType, err := cell.ParseType(dto.Type)
	if err != nil {
		return nil, err
	}

	return cell.RestoreCell(id, warehouseID, dto.Code, cellType, dto.IsActive, dto.Blocked)
}

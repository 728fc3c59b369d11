// Package taskrepo persists picking tasks and their units.
package taskrepo

import (
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskDTO is the row of the picking_tasks table. LegacyUnitID holds the
// single-unit reference of tasks imported before task units existed.
type TaskDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WarehouseID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_picking_tasks_warehouse_status"`
	TargetCellID uuid.UUID  `gorm:"type:uuid;not null"`
	Scenario     *string    `gorm:"type:varchar(64);index"`
	Status       string     `gorm:"type:varchar(16);not null;index:idx_picking_tasks_warehouse_status"`
	CreatedBy    string     `gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time  `gorm:"not null;index"`
	PickedBy     *string    `gorm:"type:varchar(128)"`
	PickedAt     *time.Time `gorm:"type:timestamptz"`
	CompletedBy  *string    `gorm:"type:varchar(128)"`
	CompletedAt  *time.Time `gorm:"type:timestamptz"`
	CanceledBy   *string    `gorm:"type:varchar(128)"`
	CanceledAt   *time.Time `gorm:"type:timestamptz"`
	CloseNote    *string    `gorm:"type:text"`
	LegacyUnitID *uuid.UUID `gorm:"type:uuid;index"`

	Units []TaskUnitDTO `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (TaskDTO) TableName() string {
	return "picking_tasks"
}

// TaskUnitDTO links a unit to a task and remembers the cell it was in when
// the task was created.
type TaskUnitDTO struct {
	TaskID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UnitID     uuid.UUID  `gorm:"type:uuid;primaryKey;index"`
	FromCellID *uuid.UUID `gorm:"type:uuid"`
}

func (TaskUnitDTO) TableName() string {
	return "picking_task_units"
}

func fromDomain(t *task.Task) TaskDTO {
	s := t.Snapshot()
	return TaskDTO{
		ID:           s.ID.Raw(),
		WarehouseID:  s.WarehouseID.Raw(),
		TargetCellID: s.TargetCellID.Raw(),
		Scenario:     s.Scenario,
		Status:       s.Status.String(),
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		PickedBy:     s.PickedBy,
		PickedAt:     s.PickedAt,
		CompletedBy:  s.CompletedBy,
		CompletedAt:  s.CompletedAt,
		CanceledBy:   s.CanceledBy,
		CanceledAt:   s.CanceledAt,
		CloseNote:    s.CloseNote,
		LegacyUnitID: kernel.RawPtr(s.LegacyUnitID),
	}
}

func unitsFromDomain(taskID kernel.UUID, units []task.Unit) []TaskUnitDTO {
	dtos := make([]TaskUnitDTO, 0, len(units))
	for _, u := range units {
		dtos = append(dtos, TaskUnitDTO{
			TaskID:     taskID.Raw(),
			UnitID:     u.UnitID().Raw(),
			FromCellID: kernel.RawPtr(u.FromCellID()),
		})
	}
	return dtos
}

func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}
	warehouseID, err := kernel.UUIDFromRaw(dto.WarehouseID)
	if err != nil {
		return nil, err
	}
	targetCellID, err := kernel.UUIDFromRaw(dto.TargetCellID)
	if err != nil {
		return nil, err
	}
	legacyUnitID, err := kernel.UUIDPtrFromRaw(dto.LegacyUnitID)
	if err != nil {
		return nil, err
	}
	status, err := task.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	units := make([]task.Unit, 0, len(dto.Units))
	for _, u := range dto.Units {
		unitID, err := kernel.UUIDFromRaw(u.UnitID)
		if err != nil {
			return nil, err
		}
		fromCellID, err := kernel.UUIDPtrFromRaw(u.FromCellID)
		if err != nil {
			return nil, err
		}
		member, err := task.NewUnit(unitID, fromCellID)
		if err != nil {
			return nil, err
		}
		units = append(units, member)
	}

	return task.RestoreTask(task.Snapshot{
		ID:           id,
		WarehouseID:  warehouseID,
		TargetCellID: targetCellID,
		Scenario:     dto.Scenario,
		Status:       status,
		CreatedBy:    dto.CreatedBy,
		CreatedAt:    dto.CreatedAt,
		PickedBy:     dto.PickedBy,
		PickedAt:     dto.PickedAt,
		CompletedBy:  dto.CompletedBy,
		CompletedAt:  dto.CompletedAt,
		CanceledBy:   dto.CanceledBy,
		CanceledAt:   dto.CanceledAt,
		CloseNote:    dto.CloseNote,
		LegacyUnitID: legacyUnitID,
		Units:        units,
	})
}

// Package historyrepo appends task lifecycle events.
package historyrepo

import (
	"time"

	"warehouse/internal/adapters/out/postgres/pgutil"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EventDTO is the row of the picking_task_history table.
type EventDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskID      *uuid.UUID `gorm:"type:uuid;index"`
	Kind        string     `gorm:"type:varchar(32);not null"`
	Actor       string     `gorm:"type:varchar(128);not null"`
	Summary     string     `gorm:"type:text;not null"`
	Meta        []byte     `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
}

func (EventDTO) TableName() string {
	return "picking_task_history"
}

func fromDomain(e *history.Event) (EventDTO, error) {
	meta, err := pgutil.MarshalMeta(e.Meta())
	if err != nil {
		return EventDTO{}, err
	}

	return EventDTO{
		ID:          e.ID().Raw(),
		WarehouseID: e.WarehouseID().Raw(),
		TaskID:      kernel.RawPtr(e.TaskID()),
		Kind:        e.Kind().String(),
		Actor:       e.Actor(),
		Summary:     e.Summary(),
		Meta:        meta,
		CreatedAt:   e.At(),
	}, nil
}

package ports

import (
	"context"

	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/movement"
)

// MoveRepository appends move records. Records are never updated or deleted.
type MoveRepository interface {
	Add(ctx context.Context, record *movement.Record) error
}

// HistoryRepository appends task lifecycle events.
type HistoryRepository interface {
	Add(ctx context.Context, event *history.Event) error
}

// EventPublisher fans lifecycle events out to other systems after the
// transaction that produced them has committed. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, events ...*history.Event) error
}

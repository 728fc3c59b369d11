package kafka

import (
	"context"
	"log/slog"

	"warehouse/internal/core/domain/model/history"
)

// NopPublisher drops events. It is used when no broker is configured; the
// history table still records every event.
type NopPublisher struct {
	logger *slog.Logger
}

func NewNopPublisher(logger *slog.Logger) NopPublisher {
	return NopPublisher{logger: logger}
}

func (p NopPublisher) Publish(ctx context.Context, events ...*history.Event) error {
	if p.logger != nil && len(events) > 0 {
		p.logger.DebugContext(ctx, "event publishing disabled", "dropped", len(events))
	}
	return nil
}

package metrics

import (
	"context"

	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/ports"
)

// InstrumentedPublisher counts the events passed to the wrapped publisher.
type InstrumentedPublisher struct {
	next    ports.EventPublisher
	metrics *Metrics
}

func NewInstrumentedPublisher(next ports.EventPublisher, m *Metrics) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, metrics: m}
}

func (p *InstrumentedPublisher) Publish(ctx context.Context, events ...*history.Event) error {
	err := p.next.Publish(ctx, events...)
	p.metrics.EventsPublished.WithLabelValues(result(err)).Add(float64(len(events)))
	return err
}

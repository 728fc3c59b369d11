// Package kafka publishes task lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warehouse/internal/core/domain/model/history"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

var ErrPublisherUnavailable = errors.New("event publisher unavailable")

// Config describes the broker connection and the breaker around it.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// FailureThreshold is the number of consecutive failed writes that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial write.
	OpenTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per event. Writes go through a circuit
// breaker so an unreachable broker fails fast instead of stalling handlers.
type Publisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafkago.RequireOne,
	}
	return newPublisher(writer, cfg, logger)
}

func newPublisher(writer messageWriter, cfg Config, logger *slog.Logger) *Publisher {
	logger = logger.With("component", "kafka_publisher")
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka:" + cfg.Topic,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Publisher{
		writer:  writer,
		breaker: breaker,
		logger:  logger,
	}
}

// Publish writes the events in one batch. Events are keyed by task so that a
// task's lifecycle stays ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, events ...*history.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for _, event := range events {
		msg, err := toMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrPublisherUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(msgs), err)
	}

	p.logger.DebugContext(ctx, "events published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// message is the JSON body of a published event.
type message struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	WarehouseID string         `json:"warehouse_id"`
	TaskID      *string        `json:"task_id,omitempty"`
	Actor       string         `json:"actor"`
	Summary     string         `json:"summary"`
	Meta        map[string]any `json:"meta,omitempty"`
	At          time.Time      `json:"at"`
}

func toMessage(event *history.Event) (kafkago.Message, error) {
	if err := event.Validate(); err != nil {
		return kafkago.Message{}, err
	}

	body := message{
		ID:          event.ID().String(),
		Kind:        event.Kind().String(),
		WarehouseID: event.WarehouseID().String(),
		Actor:       event.Actor(),
		Summary:     event.Summary(),
		Meta:        event.Meta(),
		At:          event.At(),
	}
	key := body.WarehouseID
	if taskID := event.TaskID(); taskID != nil {
		id := taskID.String()
		body.TaskID = &id
		key = id
	}

	value, err := json.Marshal(body)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode event %s: %w", body.ID, err)
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event-kind", Value: []byte(body.Kind)},
		},
		Time: body.At,
	}, nil
}

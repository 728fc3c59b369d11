package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	err      error
	calls    int
	messages []kafkago.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEvent(t *testing.T, taskID *kernel.UUID) *history.Event {
	t.Helper()
	event, err := history.NewEvent(kernel.NewUUID(), taskID, history.KindTaskCompleted, "picker-1",
		"task completed", map[string]any{"units": 2}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return event
}

func TestPublisher_Publish_WritesKeyedMessages(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newPublisher(writer, Config{Topic: "picking-tasks"}, discardLogger())
	taskID := kernel.NewUUID()
	withTask := newEvent(t, &taskID)
	warehouseWide := newEvent(t, nil)

	err := publisher.Publish(t.Context(), withTask, warehouseWide)

	require.NoError(t, err)
	require.Len(t, writer.messages, 2)
	assert.Equal(t, taskID.String(), string(writer.messages[0].Key))
	assert.Equal(t, warehouseWide.WarehouseID().String(), string(writer.messages[1].Key))
	assert.Equal(t, "event-kind", writer.messages[0].Headers[0].Key)
	assert.Equal(t, "picking_task_completed", string(writer.messages[0].Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &body))
	assert.Equal(t, taskID.String(), body["task_id"])
	assert.Equal(t, "picker-1", body["actor"])
	assert.InDelta(t, 2, body["meta"].(map[string]any)["units"], 0)
}

func TestPublisher_Publish_NoEvents(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newPublisher(writer, Config{}, discardLogger())

	require.NoError(t, publisher.Publish(t.Context()))
	assert.Zero(t, writer.calls)
}

func TestPublisher_Publish_OpensBreakerAfterFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := newPublisher(writer, Config{Topic: "picking-tasks", FailureThreshold: 2, OpenTimeout: time.Hour}, discardLogger())
	event := newEvent(t, nil)

	require.ErrorContains(t, publisher.Publish(t.Context(), event), "broker down")
	require.ErrorContains(t, publisher.Publish(t.Context(), event), "broker down")

	err := publisher.Publish(t.Context(), event)

	require.ErrorIs(t, err, ErrPublisherUnavailable)
	assert.Equal(t, 2, writer.calls)
}

func TestNopPublisher_DropsEvents(t *testing.T) {
	require.NoError(t, NewNopPublisher(discardLogger()).Publish(t.Context(), newEvent(t, nil)))
}

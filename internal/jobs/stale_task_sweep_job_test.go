package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sweepHandlerMock struct{ mock.Mock }

func (m *sweepHandlerMock) Handle(ctx context.Context, command commands.CloseStaleTasksCommand) (commands.SweepResult, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(commands.SweepResult), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_StaleTaskSweepJob_RunSweepsAllWarehousesAsSystem(t *testing.T) {
	handler := &sweepHandlerMock{}
	m := metrics.New("test")
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.CloseStaleTasksCommand) bool {
		return c.WarehouseID() == nil &&
			c.Scenario() == nil &&
			c.OlderThanDays() == 14 &&
			!c.IncludePicking() &&
			c.Actor().Role() == kernel.RoleSystem
	})).Return(commands.SweepResult{Cutoff: time.Now(), Scanned: 5, Eligible: 2, Closed: 2}, nil).Once()

	job := NewStaleTaskSweepJob(handler, SweepConfig{Schedule: "0 0 3 * * *", OlderThanDays: 14}, m, discardLogger())
	job.Run(t.Context())

	handler.AssertExpectations(t)
	assert.InDelta(t, 2, testutil.ToFloat64(m.StaleTasksClosed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TaskOperations.WithLabelValues("close_stale_tasks", metrics.ResultSuccess)), 0)
}

func Test_StaleTaskSweepJob_RunRecordsFailure(t *testing.T) {
	handler := &sweepHandlerMock{}
	m := metrics.New("test")
	handler.On("Handle", mock.Anything, mock.Anything).Return(commands.SweepResult{}, errors.New("db down")).Once()

	job := NewStaleTaskSweepJob(handler, SweepConfig{Schedule: "0 0 3 * * *", OlderThanDays: 14}, m, discardLogger())
	job.Run(t.Context())

	assert.InDelta(t, 0, testutil.ToFloat64(m.StaleTasksClosed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TaskOperations.WithLabelValues("close_stale_tasks", metrics.ResultFailure)), 0)
}

func Test_StaleTaskSweepJob_StartRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config SweepConfig
	}{
		{name: "bad schedule", config: SweepConfig{Schedule: "every night", OlderThanDays: 14}},
		{name: "zero age", config: SweepConfig{Schedule: "0 0 3 * * *"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &sweepHandlerMock{}
			job := NewStaleTaskSweepJob(handler, tt.config, nil, discardLogger())

			require.Error(t, job.Start())
			handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func Test_JobManager_StartAndStop(t *testing.T) {
	handler := &sweepHandlerMock{}
	jm := NewJobManager(handler, SweepConfig{Schedule: "0 0 3 1 1 *", OlderThanDays: 30}, nil, discardLogger())

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}

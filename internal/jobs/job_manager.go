package jobs

import (
	"fmt"
	"log/slog"

	"warehouse/internal/metrics"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	staleTaskSweepJob *StaleTaskSweepJob
}

func NewJobManager(sweepHandler SweepHandler, sweep SweepConfig, m *metrics.Metrics, logger *slog.Logger) *JobManager {
	return &JobManager{
		staleTaskSweepJob: NewStaleTaskSweepJob(sweepHandler, sweep, m, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.staleTaskSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start stale task sweep job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleTaskSweepJob.Stop()
}

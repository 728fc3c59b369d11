package jobs

import (
	"context"
	"log/slog"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/metrics"

	"github.com/robfig/cron/v3"
)

// SweepHandler runs one stale-task sweep.
type SweepHandler interface {
	Handle(ctx context.Context, command commands.CloseStaleTasksCommand) (commands.SweepResult, error)
}

// SweepConfig describes which tasks the scheduled sweep closes.
type SweepConfig struct {
	// Schedule is a six-field cron expression (seconds first).
	Schedule       string
	OlderThanDays  int
	IncludePicking bool
}

// StaleTaskSweepJob periodically force-closes stale picking tasks in every warehouse.
type StaleTaskSweepJob struct {
	handler SweepHandler
	config  SweepConfig
	metrics *metrics.Metrics
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewStaleTaskSweepJob(handler SweepHandler, config SweepConfig, m *metrics.Metrics, logger *slog.Logger) *StaleTaskSweepJob {
	return &StaleTaskSweepJob{
		handler: handler,
		config:  config,
		metrics: m,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "stale_task_sweep_job"),
	}
}

// Start schedules the sweep. An invalid schedule or age is reported here and
// nothing is started.
func (j *StaleTaskSweepJob) Start() error {
	if _, err := j.newCommand(); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc(j.config.Schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale task sweep job started",
		"schedule", j.config.Schedule, "older_than_days", j.config.OlderThanDays)
	return nil
}

// Run performs a single sweep across all warehouses.
func (j *StaleTaskSweepJob) Run(ctx context.Context) {
	cmd, err := j.newCommand()
	if err != nil {
		j.logger.ErrorContext(ctx, "Stale task sweep misconfigured", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if j.metrics != nil {
		j.metrics.RecordOperation("close_stale_tasks", err)
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Stale task sweep failed", "error", err)
		return
	}
	if j.metrics != nil {
		j.metrics.RecordStaleTasksClosed(result.Closed)
	}
	j.logger.InfoContext(ctx, "Stale task sweep finished",
		"cutoff", result.Cutoff,
		"scanned", result.Scanned,
		"eligible", result.Eligible,
		"closed", result.Closed,
		"failed", len(result.Failed),
	)
}

// Stop stops the scheduler and waits for a running sweep to return.
func (j *StaleTaskSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stale task sweep job stopped")
}

func (j *StaleTaskSweepJob) newCommand() (commands.CloseStaleTasksCommand, error) {
	return commands.NewCloseStaleTasksCommand(
		j.config.OlderThanDays, nil, nil, j.config.IncludePicking, kernel.SystemActor("stale-task-sweep"),
	)
}

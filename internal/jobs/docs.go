// Package jobs provides scheduled background tasks for the warehouse service.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// StaleTaskSweepJob force-closes picking tasks that stayed open longer than
// the configured age and whose units no longer sit in picking cells. It runs
// as the synthetic "system:stale-task-sweep" actor across all warehouses.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(sweepHandler, jobs.SweepConfig{
//		Schedule:      "0 0 3 * * *",
//		OlderThanDays: 14,
//	}, m, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed sweep is logged and retried on the next tick. Overlapping ticks are
// skipped while a sweep is still running.
package jobs

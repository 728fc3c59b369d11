package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"warehouse/cmd"
	httpin "warehouse/internal/adapters/in/http"
	"warehouse/internal/adapters/in/http/api"
	"warehouse/internal/adapters/out/postgres"
	"warehouse/internal/jobs"
	"warehouse/internal/metrics"

	"github.com/labstack/gommon/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := configs.NewLogger()

	gormDB, err := cmd.OpenDB(configs)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	m := metrics.New("warehouse")
	app := cmd.NewCompositionRoot(configs, gormDB, m, logger)
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("Error closing composition root", "error", closeErr)
		}
	}()

	if configs.SweepSchedule != "" {
		jobManager := jobs.NewJobManager(app.CreateCloseStaleTasksCommandHandler(), jobs.SweepConfig{
			Schedule:       configs.SweepSchedule,
			OlderThanDays:  configs.SweepOlderThanDays,
			IncludePicking: configs.SweepIncludePicking,
		}, m, logger)
		if err = jobManager.StartAll(); err != nil {
			log.Fatalf("Failed to start jobs: %v", err)
		}
		defer jobManager.StopAll()
	}

	startWebServer(ctx, app, m, configs.HTTPPort)
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, m *metrics.Metrics, port string) {
	doc, err := api.Load(ctx)
	if err != nil {
		log.Fatalf("Error loading OpenAPI document: %v", err)
	}
	if err = api.RegisterSwagger(doc); err != nil {
		log.Fatalf("Error registering OpenAPI document: %v", err)
	}

	server := httpin.NewServer(httpin.Handlers{
		MoveUnit:            app.CreateMoveUnitCommandHandler(),
		ChangeCellState:     app.CreateChangeCellStateCommandHandler(),
		CreatePickingTask:   app.CreateCreatePickingTaskCommandHandler(),
		ImportPickingTasks:  app.CreateImportPickingTasksCommandHandler(),
		CompletePickingTask: app.CreateCompletePickingTaskCommandHandler(),
		CancelPickingTask:   app.CreateCancelPickingTaskCommandHandler(),
		CloseStaleTasks:     app.CreateCloseStaleTasksCommandHandler(),
		GetPickingTask:      app.CreateGetPickingTaskQueryHandler(),
		GetUnitMoves:        app.CreateGetUnitMovesQueryHandler(),
	}, m, app.Logger())
	e := httpin.NewRouter(server, doc, m, app.Logger())

	go func() {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", startErr)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}
}

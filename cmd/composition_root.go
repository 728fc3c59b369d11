package cmd

import (
	"log/slog"

	"warehouse/internal/adapters/out/kafka"
	"warehouse/internal/adapters/out/postgres"
	"warehouse/internal/adapters/out/postgres/lockrepo"
	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/ports"
	"warehouse/internal/metrics"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	publisher  ports.EventPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	closers    []func() error
}

// NewCompositionRoot wires adapters around gormDB. Events go to Kafka when
// brokers are configured and are dropped otherwise.
func NewCompositionRoot(config Config, gormDB *gorm.DB, m *metrics.Metrics, logger *slog.Logger) *CompositionRoot {
	root := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    m,
		logger:     logger,
	}

	var publisher ports.EventPublisher = kafka.NewNopPublisher(logger)
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		kp := kafka.NewPublisher(kafka.Config{Brokers: brokers, Topic: config.KafkaTaskEventsTopic}, logger)
		root.closers = append(root.closers, kp.Close)
		publisher = kp
	}
	if m != nil {
		publisher = metrics.NewInstrumentedPublisher(publisher, m)
	}
	root.publisher = publisher
	return root
}

// Close releases the broker connection.
func (c *CompositionRoot) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

func (c *CompositionRoot) moveUoWFactory() commands.MoveUoWFactory {
	return FuncMoveUoWFactory(func() commands.MoveUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) taskUoWFactory() commands.TaskUoWFactory {
	return FuncTaskUoWFactory(func() commands.TaskUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateMoveUnitCommandHandler() commands.MoveUnitCommandHandler {
	return commands.NewMoveUnitCommandHandler(c.moveUoWFactory())
}

func (c *CompositionRoot) CreateChangeCellStateCommandHandler() commands.ChangeCellStateCommandHandler {
	var f commands.CellUoWFactory = FuncCellUoWFactory(func() commands.CellUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeCellStateCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateCreatePickingTaskCommandHandler() commands.CreatePickingTaskCommandHandler {
	return commands.NewCreatePickingTaskCommandHandler(c.taskUoWFactory(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateImportPickingTasksCommandHandler() commands.ImportPickingTasksCommandHandler {
	return commands.NewImportPickingTasksCommandHandler(c.taskUoWFactory(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCompletePickingTaskCommandHandler() commands.CompletePickingTaskCommandHandler {
	return commands.NewCompletePickingTaskCommandHandler(
		c.taskUoWFactory(), c.CreateMoveUnitCommandHandler(), c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateCancelPickingTaskCommandHandler() commands.CancelPickingTaskCommandHandler {
	return commands.NewCancelPickingTaskCommandHandler(
		c.taskUoWFactory(),
		c.CreateMoveUnitCommandHandler(),
		c.publisher,
		commands.CancelPolicy{RequireFullRevert: c.config.CancelRequireFullRevert},
		c.logger,
	)
}

func (c *CompositionRoot) CreateCloseStaleTasksCommandHandler() commands.CloseStaleTasksCommandHandler {
	return commands.NewCloseStaleTasksCommandHandler(c.taskUoWFactory(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetPickingTaskQueryHandler() queries.GetPickingTaskQueryHandler {
	return queries.NewGetPickingTaskQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUnitMovesQueryHandler() queries.GetUnitMovesQueryHandler {
	return queries.NewGetUnitMovesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateLockRepository() *lockrepo.GormLockRepository {
	return lockrepo.NewGormLockRepository(c.gormDB)
}

type FuncCellUoWFactory func() commands.CellUoW

func (f FuncCellUoWFactory) Create() commands.CellUoW {
	return f()
}

type FuncMoveUoWFactory func() commands.MoveUoW

func (f FuncMoveUoWFactory) Create() commands.MoveUoW {
	return f()
}

type FuncTaskUoWFactory func() commands.TaskUoW

func (f FuncTaskUoWFactory) Create() commands.TaskUoW {
	return f()
}

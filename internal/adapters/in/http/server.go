package http

import (
	"context"
	"log/slog"
	"net/http"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/metrics"
	"warehouse/internal/pkg/batch"

	"github.com/labstack/echo/v4"
)

type MoveUnitHandler interface {
	Handle(ctx context.Context, command commands.MoveUnitCommand) (commands.MoveResult, error)
}

type ChangeCellStateHandler interface {
	Handle(ctx context.Context, command commands.ChangeCellStateCommand) (*cell.Cell, error)
}

type CreatePickingTaskHandler interface {
	Handle(ctx context.Context, command commands.CreatePickingTaskCommand) (*task.Task, error)
}

type ImportPickingTasksHandler interface {
	Handle(ctx context.Context, command commands.ImportPickingTasksCommand) (batch.Report[commands.ImportedTask], error)
}

type CompletePickingTaskHandler interface {
	Handle(ctx context.Context, command commands.CompletePickingTaskCommand) (commands.CompleteResult, error)
}

type CancelPickingTaskHandler interface {
	Handle(ctx context.Context, command commands.CancelPickingTaskCommand) (commands.CancelResult, error)
}

type CloseStaleTasksHandler interface {
	Handle(ctx context.Context, command commands.CloseStaleTasksCommand) (commands.SweepResult, error)
}

type GetPickingTaskHandler interface {
	Handle(ctx context.Context, query queries.GetPickingTaskQuery) (queries.GetPickingTaskQueryResponse, error)
}

type GetUnitMovesHandler interface {
	Handle(ctx context.Context, query queries.GetUnitMovesQuery) ([]queries.GetUnitMovesQueryResponse, error)
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	MoveUnit            MoveUnitHandler
	ChangeCellState     ChangeCellStateHandler
	CreatePickingTask   CreatePickingTaskHandler
	ImportPickingTasks  ImportPickingTasksHandler
	CompletePickingTask CompletePickingTaskHandler
	CancelPickingTask   CancelPickingTaskHandler
	CloseStaleTasks     CloseStaleTasksHandler
	GetPickingTask      GetPickingTaskHandler
	GetUnitMoves        GetUnitMovesHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewServer(handlers Handlers, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{handlers: handlers, metrics: m, logger: logger}
}

func (s *Server) record(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, err)
	}
}

// MoveUnit handles POST /api/v1/units/{unitId}/move.
func (s *Server) MoveUnit(c echo.Context, unitID kernel.UUID) error {
	var body MoveUnitRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}
	warehouseID, _ := warehouseFrom(c)
	cellID, err := kernel.UUIDFromString(body.CellID)
	if err != nil {
		return writeError(c, s.logger, err)
	}

	cmd, err := commands.NewMoveUnitCommand(warehouseID, unitID, cellID, movement.SourceManual, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	result, err := s.handlers.MoveUnit.Handle(c.Request().Context(), cmd)
	s.record("move_unit", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toMoveResult(result))
}

// GetUnitMoves handles GET /api/v1/units/{unitId}/moves.
func (s *Server) GetUnitMoves(c echo.Context, unitID kernel.UUID, limit int) error {
	warehouseID, _ := warehouseFrom(c)
	query, err := queries.NewGetUnitMovesQuery(warehouseID, unitID, limit)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	moves, err := s.handlers.GetUnitMoves.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toUnitMoves(moves))
}

// ChangeCellState handles POST /api/v1/cells/{cellId}/state.
func (s *Server) ChangeCellState(c echo.Context, cellID kernel.UUID) error {
	var body ChangeCellStateRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}
	action, err := commands.ParseCellAction(body.Action)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	warehouseID, _ := warehouseFrom(c)

	cmd, err := commands.NewChangeCellStateCommand(warehouseID, cellID, action, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	updated, err := s.handlers.ChangeCellState.Handle(c.Request().Context(), cmd)
	s.record("change_cell_state", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toCell(updated))
}

// CreatePickingTask handles POST /api/v1/tasks.
func (s *Server) CreatePickingTask(c echo.Context) error {
	var body CreatePickingTaskRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}
	unitIDs := make([]kernel.UUID, 0, len(body.UnitIDs))
	for _, raw := range body.UnitIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return writeError(c, s.logger, err)
		}
		unitIDs = append(unitIDs, id)
	}
	targetCellID, err := kernel.UUIDFromString(body.TargetCellID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	warehouseID, _ := warehouseFrom(c)

	cmd, err := commands.NewCreatePickingTaskCommand(warehouseID, unitIDs, targetCellID, body.Scenario, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	created, err := s.handlers.CreatePickingTask.Handle(c.Request().Context(), cmd)
	s.record("create_task", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusCreated, toPickingTask(created))
}

// ImportPickingTasks handles POST /api/v1/tasks/import.
func (s *Server) ImportPickingTasks(c echo.Context) error {
	var body ImportPickingTasksRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}
	rows := make([]commands.ImportRow, 0, len(body.Rows))
	for _, r := range body.Rows {
		rows = append(rows, commands.ImportRow{
			Barcode:        r.Barcode,
			TargetCellCode: r.TargetCellCode,
			Scenario:       r.Scenario,
		})
	}
	warehouseID, _ := warehouseFrom(c)

	cmd, err := commands.NewImportPickingTasksCommand(warehouseID, rows, body.Scenario, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	report, err := s.handlers.ImportPickingTasks.Handle(c.Request().Context(), cmd)
	s.record("import_tasks", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toImportReport(report))
}

// GetPickingTask handles GET /api/v1/tasks/{taskId}.
func (s *Server) GetPickingTask(c echo.Context, taskID kernel.UUID) error {
	warehouseID, _ := warehouseFrom(c)
	query, err := queries.NewGetPickingTaskQuery(warehouseID, taskID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	view, err := s.handlers.GetPickingTask.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toPickingTaskView(view))
}

// CompletePickingTask handles POST /api/v1/tasks/{taskId}/complete.
func (s *Server) CompletePickingTask(c echo.Context, taskID kernel.UUID) error {
	var body CompletePickingTaskRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}
	warehouseID, _ := warehouseFrom(c)

	cmd, err := commands.NewCompletePickingTaskCommand(
		warehouseID, taskID, body.FromCellCode, body.ToCellCode, body.Barcode, actorFrom(c),
	)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	result, err := s.handlers.CompletePickingTask.Handle(c.Request().Context(), cmd)
	s.record("complete_task", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, CompleteResult{
		TaskID:     result.TaskID.String(),
		TaskStatus: result.TaskStatus.String(),
		Remaining:  result.Remaining,
		Move:       toMoveResult(result.Move),
	})
}

// CancelPickingTask handles POST /api/v1/tasks/{taskId}/cancel.
func (s *Server) CancelPickingTask(c echo.Context, taskID kernel.UUID) error {
	warehouseID, _ := warehouseFrom(c)
	cmd, err := commands.NewCancelPickingTaskCommand(warehouseID, taskID, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	result, err := s.handlers.CancelPickingTask.Handle(c.Request().Context(), cmd)
	s.record("cancel_task", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, toCancelResult(result))
}

// CloseStaleTasks handles POST /api/v1/admin/stale-tasks/close. Without
// all_warehouses the sweep is scoped to the caller's warehouse.
func (s *Server) CloseStaleTasks(c echo.Context) error {
	var body CloseStaleTasksRequest
	if err := s.bind(c, &body); err != nil {
		return writeError(c, s.logger, err)
	}

	var scope *kernel.UUID
	if !body.AllWarehouses {
		warehouseID, ok := warehouseFrom(c)
		if !ok {
			return writeError(c, s.logger, echo.NewHTTPError(http.StatusBadRequest,
				HeaderWarehouseID+" is required unless all_warehouses is set"))
		}
		scope = &warehouseID
	}

	cmd, err := commands.NewCloseStaleTasksCommand(body.OlderThanDays, scope, body.Scenario, body.IncludePicking, actorFrom(c))
	if err != nil {
		return writeError(c, s.logger, err)
	}
	result, err := s.handlers.CloseStaleTasks.Handle(c.Request().Context(), cmd)
	s.record("close_stale_tasks", err)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	if s.metrics != nil {
		s.metrics.RecordStaleTasksClosed(result.Closed)
	}
	return c.JSON(http.StatusOK, toSweepResult(result))
}

func (s *Server) bind(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(dest)
}

package http

import (
	"fmt"
	"net/http"

	"warehouse/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// RegisterHandlers mounts the API routes on router. Path and query
// parameters are bound the same way oapi-codegen wrappers do.
func (s *Server) RegisterHandlers(router *echo.Echo) {
	scoped := router.Group("/api/v1", s.identify(true))
	scoped.POST("/units/:unitId/move", s.withID("unitId", s.MoveUnit))
	scoped.GET("/units/:unitId/moves", s.withID("unitId", s.getUnitMoves))
	scoped.POST("/cells/:cellId/state", s.withID("cellId", s.ChangeCellState))
	scoped.POST("/tasks", s.CreatePickingTask)
	scoped.POST("/tasks/import", s.ImportPickingTasks)
	scoped.GET("/tasks/:taskId", s.withID("taskId", s.GetPickingTask))
	scoped.POST("/tasks/:taskId/complete", s.withID("taskId", s.CompletePickingTask))
	scoped.POST("/tasks/:taskId/cancel", s.withID("taskId", s.CancelPickingTask))

	admin := router.Group("/api/v1/admin", s.identify(false))
	admin.POST("/stale-tasks/close", s.CloseStaleTasks)
}

func (s *Server) withID(name string, next func(echo.Context, kernel.UUID) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		var raw uuid.UUID
		err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
		if err != nil {
			return writeError(c, s.logger, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Invalid format for parameter %s: %s", name, err)))
		}
		id, err := kernel.UUIDFromRaw(raw)
		if err != nil {
			return writeError(c, s.logger, err)
		}
		return next(c, id)
	}
}

func (s *Server) getUnitMoves(c echo.Context, unitID kernel.UUID) error {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &limit); err != nil {
		return writeError(c, s.logger, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter limit: %s", err)))
	}
	return s.GetUnitMoves(c, unitID, limit)
}

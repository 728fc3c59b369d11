package http

import (
	"fmt"
	"strings"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID     = "X-Actor-ID"
	HeaderActorRole   = "X-Actor-Role"
	HeaderWarehouseID = "X-Warehouse-ID"

	actorKey     = "actor"
	warehouseKey = "warehouse"
)

// ErrSystemRoleNotAllowed is returned when a client claims the system role.
var ErrSystemRoleNotAllowed = fmt.Errorf("%w: system role is reserved", errs.ErrForbidden)

// identify resolves the caller from headers set by the authenticating proxy.
// The warehouse header is optional for admin routes and required elsewhere.
func (s *Server) identify(requireWarehouse bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := kernel.Role(strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole))))
			if role == kernel.RoleSystem {
				return writeError(c, s.logger, ErrSystemRoleNotAllowed)
			}
			actor, err := kernel.NewActor(c.Request().Header.Get(HeaderActorID), role)
			if err != nil {
				return writeError(c, s.logger, err)
			}
			c.Set(actorKey, actor)

			raw := strings.TrimSpace(c.Request().Header.Get(HeaderWarehouseID))
			if raw == "" && !requireWarehouse {
				return next(c)
			}
			warehouseID, err := kernel.UUIDFromString(raw)
			if err != nil {
				return writeError(c, s.logger, errs.NewValueIsInvalidErrorWithCause(HeaderWarehouseID, err))
			}
			c.Set(warehouseKey, warehouseID)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}

func warehouseFrom(c echo.Context) (kernel.UUID, bool) {
	id, ok := c.Get(warehouseKey).(kernel.UUID)
	return id, ok
}

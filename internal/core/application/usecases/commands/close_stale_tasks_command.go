package commands

import (
	"errors"
	"fmt"
	"strings"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

const (
	minStaleDays = 1
	maxStaleDays = 3650
)

var ErrCloseStaleTasksCommandIsNotConstructed = errors.New(
	"CloseStaleTasksCommand must be created via NewCloseStaleTasksCommand constructor",
)

// CloseStaleTasksCommand force-closes old active tasks. Only administrators
// and the scheduler may run it.
type CloseStaleTasksCommand struct { //nolint:recvcheck //using for validation
	olderThanDays  int
	warehouseID    *kernel.UUID
	scenario       *string
	includePicking bool
	actor          kernel.Actor

	guard guard.ConstructorGuard
}

// NewCloseStaleTasksCommand builds a sweep over tasks older than
// olderThanDays. warehouseID and scenario narrow it when set; includePicking
// also closes tasks whose units already reached a picking cell.
func NewCloseStaleTasksCommand(
	olderThanDays int,
	warehouseID *kernel.UUID,
	scenario *string,
	includePicking bool,
	actor kernel.Actor,
) (CloseStaleTasksCommand, error) {
	if err := actor.Validate(); err != nil {
		return CloseStaleTasksCommand{}, err
	}
	if !actor.IsAdministrative() {
		return CloseStaleTasksCommand{}, fmt.Errorf("%w: %s may not close stale tasks", errs.ErrForbidden, actor)
	}
	if olderThanDays < minStaleDays || olderThanDays > maxStaleDays {
		return CloseStaleTasksCommand{}, errs.NewValueIsOutOfRangeError("older than days", olderThanDays, minStaleDays, maxStaleDays)
	}
	if warehouseID != nil {
		if err := warehouseID.Validate(); err != nil {
			return CloseStaleTasksCommand{}, err
		}
	}
	if scenario != nil && strings.TrimSpace(*scenario) == "" {
		scenario = nil
	}

	return CloseStaleTasksCommand{
		olderThanDays:  olderThanDays,
		warehouseID:    warehouseID,
		scenario:       scenario,
		includePicking: includePicking,
		actor:          actor,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CloseStaleTasksCommand) Validate() error {
	return c.guard.Validate(ErrCloseStaleTasksCommandIsNotConstructed)
}

func (c CloseStaleTasksCommand) OlderThanDays() int        { return c.olderThanDays }
func (c CloseStaleTasksCommand) WarehouseID() *kernel.UUID { return c.warehouseID }
func (c CloseStaleTasksCommand) Scenario() *string         { return c.scenario }
func (c CloseStaleTasksCommand) IncludePicking() bool      { return c.includePicking }
func (c CloseStaleTasksCommand) Actor() kernel.Actor       { return c.actor }

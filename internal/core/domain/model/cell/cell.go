package cell

import (
	"errors"
	"strings"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	// ErrCellIsNotConstructed is returned when using a Cell not built by NewCell or RestoreCell.
	ErrCellIsNotConstructed = errors.New("Cell must be created via NewCell or RestoreCell constructor")
	// ErrCodeIsRequired is returned for an empty cell code.
	ErrCodeIsRequired = errs.NewValueIsRequiredError("cell code")
)

// Cell is a named physical location of a warehouse.
//
// Invariants:
//   - id and warehouseID are valid identifiers
//   - code is non-empty (uniqueness within a warehouse is enforced by storage)
//   - cellType is one of the known types
//
// A cell accepts units only while it is active and not blocked.
type Cell struct {
	id          kernel.UUID
	warehouseID kernel.UUID
	code        string
	cellType    Type
	isActive    bool
	blocked     bool
	guard       guard.ConstructorGuard
}

// NewCell creates an active, unblocked cell.
//
// Example:
//
//	c, err := cell.NewCell(kernel.NewUUID(), warehouseID, "PICK-01", cell.Picking)
//	if err != nil {
//	    return err
//	}
func NewCell(id, warehouseID kernel.UUID, code string, cellType Type) (*Cell, error) {
	return RestoreCell(id, warehouseID, code, cellType, true, false)
}

// RestoreCell rebuilds a Cell from persistence with its stored flags.
func RestoreCell(id, warehouseID kernel.UUID, code string, cellType Type, isActive, blocked bool) (*Cell, error) {
	c := &Cell{
		isActive: isActive,
		blocked:  blocked,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setWarehouseID(warehouseID),
		c.setCode(code),
		c.setType(cellType),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate reports whether the cell was built by a constructor.
func (c *Cell) Validate() error {
	if c == nil {
		return ErrCellIsNotConstructed
	}
	return c.guard.Validate(ErrCellIsNotConstructed)
}

func (c *Cell) ID() kernel.UUID {
	return c.id
}

func (c *Cell) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c *Cell) Code() string {
	return c.code
}

func (c *Cell) Type() Type {
	return c.cellType
}

func (c *Cell) IsActive() bool {
	return c.isActive
}

func (c *Cell) IsBlocked() bool {
	return c.blocked
}

// IsAvailable reports whether units may be moved into the cell.
func (c *Cell) IsAvailable() bool {
	return c.isActive && !c.blocked
}

// BelongsTo reports whether the cell is part of the given warehouse.
func (c *Cell) BelongsTo(warehouseID kernel.UUID) bool {
	return c.warehouseID.IsEqual(warehouseID)
}

// Activate makes the cell usable again.
func (c *Cell) Activate() {
	c.isActive = true
}

// Deactivate takes the cell out of service. Units already inside stay where they are.
func (c *Cell) Deactivate() {
	c.isActive = false
}

// Block temporarily refuses new units, e.g. during maintenance.
func (c *Cell) Block() {
	c.blocked = true
}

func (c *Cell) Unblock() {
	c.blocked = false
}

func (c *Cell) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Cell) setWarehouseID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.warehouseID = id
	return nil
}

func (c *Cell) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrCodeIsRequired
	}
	c.code = code
	return nil
}

func (c *Cell) setType(t Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.cellType = t
	return nil
}

package cell

import (
	"errors"
	"fmt"

	"warehouse/internal/pkg/errs"
)

// ErrUnknownCellType is returned for cell types outside the known set.
var ErrUnknownCellType = errors.New("unknown cell type")

// Type is the kind of a cell.
type Type int

const (
	// Unknown is the zero value and never valid.
	Unknown Type = iota
	// Bin is the receiving area; units enter the warehouse here.
	Bin
	// Storage holds units awaiting orders.
	Storage
	// Shipping holds units prepared for dispatch.
	Shipping
	// Picking holds units collected by a picking task.
	Picking
	// Rejected holds units refused by the recipient or damaged.
	Rejected
	// FF holds units handed over to fulfilment partners.
	FF
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		Bin:      "bin",
		Storage:  "storage",
		Shipping: "shipping",
		Picking:  "picking",
		Rejected: "rejected",
		FF:       "ff",
	}
}

// Types lists every valid cell type.
func Types() []Type {
	return []Type{Bin, Storage, Shipping, Picking, Rejected, FF}
}

// ParseType maps a stored or requested code to a Type. Unknown codes are an error.
func ParseType(code string) (Type, error) {
	for t, s := range getTypeStrings() {
		if s == code {
			return t, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("cell type", fmt.Errorf("%w: %q", ErrUnknownCellType, code))
}

func (t Type) Validate() error {
	if _, ok := getTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("cell type", fmt.Errorf("%w: %d", ErrUnknownCellType, t))
	}
	return nil
}

func (t Type) String() string {
	if s, ok := getTypeStrings()[t]; ok {
		return s
	}
	return "unknown"
}

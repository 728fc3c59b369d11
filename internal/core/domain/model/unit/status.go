package unit

import (
	"errors"
	"fmt"

	"warehouse/internal/pkg/errs"
)

// ErrUnknownStatus is returned for status codes outside the known set.
var ErrUnknownStatus = errors.New("unknown unit status")

// Status is derived from the type of the cell a unit sits in.
type Status int

const (
	// Unset is the status of a unit that was never placed.
	Unset Status = iota
	Bin
	Stored
	Shipping
	Picking
	Rejected
	FF
	// Out is terminal: the unit left the warehouse and has no cell.
	Out
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Bin:      "bin",
		Stored:   "stored",
		Shipping: "shipping",
		Picking:  "picking",
		Rejected: "rejected",
		FF:       "ff",
		Out:      "out",
	}
}

// ParseStatus maps a stored code to a Status. The empty code is Unset.
func ParseStatus(code string) (Status, error) {
	if code == "" {
		return Unset, nil
	}
	for s, str := range getStatusStrings() {
		if str == code {
			return s, nil
		}
	}
	return Unset, errs.NewValueIsInvalidErrorWithCause("unit status", fmt.Errorf("%w: %q", ErrUnknownStatus, code))
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return ""
}

// IsLocated reports whether the status implies the unit sits in a cell.
func (s Status) IsLocated() bool {
	return s != Unset && s != Out
}

func (s Status) validate() error {
	if s == Unset {
		return nil
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("unit status", fmt.Errorf("%w: %d", ErrUnknownStatus, s))
	}
	return nil
}

// Package guard marks domain values as built by their constructors so that
// zero values can be told apart from valid ones.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in aggregates, commands and queries. Only
// NewConstructorGuard produces a guard that passes Validate.
//
// Example:
//
//	type Cell struct {
//	    code  string
//	    guard guard.ConstructorGuard
//	}
//
//	func (c *Cell) Validate() error {
//	    return c.guard.Validate(ErrCellIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its owner as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}

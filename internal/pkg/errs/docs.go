// Package errs provides the error categories shared by the warehouse core.
//
// Every category follows the same shape:
//   - a sentinel error (e.g. ErrObjectNotFound) used with errors.Is
//   - a struct carrying details (e.g. ObjectNotFoundError)
//   - constructors with and without a cause
//   - Error() for the message and Unwrap() returning the sentinel
//
// Domain packages declare their own sentinels (inventory locked, ambiguous
// match, transition not allowed, ...) by wrapping one of these categories, so
// adapters can classify any error with errors.Is without knowing the domain.
package errs

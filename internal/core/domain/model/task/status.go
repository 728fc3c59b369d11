package task

import (
	"errors"
	"fmt"

	"warehouse/internal/pkg/errs"
)

var (
	// ErrUnknownStatus is returned for status codes outside the known set.
	ErrUnknownStatus = errors.New("unknown task status")
	// ErrTaskIsClosed is returned when acting on a done or canceled task.
	ErrTaskIsClosed = fmt.Errorf("%w: task is already closed", errs.ErrConflict)
	// ErrTaskIsNotInProgress is returned when completing a task nobody started.
	ErrTaskIsNotInProgress = fmt.Errorf("%w: task is not in progress", errs.ErrConflict)
)

// Status is the lifecycle state of a picking task.
type Status int

const (
	Unknown Status = iota
	Open
	InProgress
	Done
	Canceled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Open:       "open",
		InProgress: "in_progress",
		Done:       "done",
		Canceled:   "canceled",
	}
}

// ActiveStatuses are the statuses of tasks that still hold their units.
func ActiveStatuses() []Status {
	return []Status{Open, InProgress}
}

// ParseStatus maps a stored code to a Status.
func ParseStatus(code string) (Status, error) {
	for s, str := range getStatusStrings() {
		if str == code {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("task status", fmt.Errorf("%w: %q", ErrUnknownStatus, code))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("task status", fmt.Errorf("%w: %d", ErrUnknownStatus, s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the task can no longer change.
func (s Status) IsTerminal() bool {
	return s == Done || s == Canceled
}

// IsActive reports whether the task is open or in progress.
func (s Status) IsActive() bool {
	return s == Open || s == InProgress
}

// Start returns the status after a completion attempt begins.
func (s Status) Start() (Status, error) {
	if !s.IsActive() {
		return 0, fmt.Errorf("%w: status is %s", ErrTaskIsClosed, s)
	}
	return InProgress, nil
}

// Complete returns the status after a successful completion.
func (s Status) Complete() (Status, error) {
	if s != InProgress {
		return 0, fmt.Errorf("%w: status is %s", ErrTaskIsNotInProgress, s)
	}
	return Done, nil
}

// Cancel returns the status after cancellation.
func (s Status) Cancel() (Status, error) {
	if !s.IsActive() {
		return 0, fmt.Errorf("%w: status is %s", ErrTaskIsClosed, s)
	}
	return Canceled, nil
}

// ForceClose returns the status after an administrative close.
func (s Status) ForceClose() (Status, error) {
	if !s.IsActive() {
		return 0, fmt.Errorf("%w: status is %s", ErrTaskIsClosed, s)
	}
	return Done, nil
}

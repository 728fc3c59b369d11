package commands

import (
	"context"
	"errors"

	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/errs"
)

type sagaState int

const (
	sagaPending sagaState = iota
	sagaCommitted
	sagaRolledBack
)

func (s sagaState) String() string {
	switch s {
	case sagaPending:
		return "pending"
	case sagaCommitted:
		return "committed"
	case sagaRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// creationSaga inserts a task and then its units. When the unit insert fails
// the task row is deleted before the error is returned. It runs inside the
// caller's unit of work, which rolls everything back anyway; the explicit
// compensation keeps the insert correct on stores without multi-table
// transactions.
type creationSaga struct {
	repo  ports.TaskRepository
	task  *task.Task
	state sagaState
}

func newCreationSaga(repo ports.TaskRepository, t *task.Task) *creationSaga {
	return &creationSaga{repo: repo, task: t, state: sagaPending}
}

func (s *creationSaga) Run(ctx context.Context) error {
	if s.state != sagaPending {
		return errs.NewInternalError("create task", errors.New("saga already finished: "+s.state.String()))
	}

	if err := s.repo.Add(ctx, s.task); err != nil {
		s.state = sagaRolledBack
		return err
	}

	if err := s.repo.AddUnits(ctx, s.task.ID(), s.task.Units()); err != nil {
		return s.compensate(ctx, err)
	}

	s.state = sagaCommitted
	return nil
}

func (s *creationSaga) State() sagaState {
	return s.state
}

func (s *creationSaga) compensate(ctx context.Context, cause error) error {
	s.state = sagaRolledBack
	if err := s.repo.Delete(ctx, s.task.ID()); err != nil {
		return errors.Join(cause, errs.NewInternalError("delete task "+s.task.ID().String(), err))
	}
	return cause
}

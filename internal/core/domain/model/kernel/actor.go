package kernel

import (
	"fmt"
	"strings"

	"warehouse/internal/pkg/errs"
)

// Role is the already-authenticated role an actor acts under.
type Role string

const (
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
	// RoleSystem is used by scheduled jobs and the admin CLI.
	RoleSystem Role = "system"
)

// ErrActorIsRequired is returned when an operation is invoked without an actor.
var ErrActorIsRequired = fmt.Errorf("%w: actor is required", errs.ErrUnauthorized)

// Actor is the identity every operation is performed on behalf of.
type Actor struct {
	id   string
	role Role
}

// NewActor trims id and rejects an empty one. Unknown roles fall back to worker.
func NewActor(id string, role Role) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, ErrActorIsRequired
	}
	switch role {
	case RoleWorker, RoleManager, RoleAdmin, RoleSystem:
	default:
		role = RoleWorker
	}
	return Actor{id: id, role: role}, nil
}

// SystemActor is the synthetic actor of administrative sweeps.
func SystemActor(name string) Actor {
	return Actor{id: "system:" + name, role: RoleSystem}
}

func (a Actor) ID() string {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) Validate() error {
	if a.id == "" {
		return ErrActorIsRequired
	}
	return nil
}

// IsAdministrative reports whether the actor may run administrative overrides.
func (a Actor) IsAdministrative() bool {
	return a.role == RoleAdmin || a.role == RoleSystem
}

func (a Actor) String() string {
	return a.id
}

package kernel

import (
	"fmt"

	"warehouse/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating the nil UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString or UUIDFromRaw")

// UUID identifies warehouses, cells, units, tasks and history entries.
// The zero value is invalid.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) identifier.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses the textual forms accepted by github.com/google/uuid.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", fmt.Errorf("invalid UUID format: %w", err))
	}
	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// UUIDFromRaw wraps a uuid.UUID read from persistence. The nil UUID is rejected.
func UUIDFromRaw(id uuid.UUID) (UUID, error) {
	wrapped := UUID{id: id}
	if err := wrapped.Validate(); err != nil {
		return UUID{}, err
	}
	return wrapped, nil
}

// UUIDPtrFromRaw maps a nullable column to an optional identifier.
func UUIDPtrFromRaw(id *uuid.UUID) (*UUID, error) {
	if id == nil {
		return nil, nil //nolint:nilnil // absent reference is not an error
	}
	wrapped, err := UUIDFromRaw(*id)
	if err != nil {
		return nil, err
	}
	return &wrapped, nil
}

// RawPtr maps an optional identifier to a nullable column.
func RawPtr(id *UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Raw()
	return &raw
}

func (u UUID) String() string {
	return u.id.String()
}

// Raw returns the underlying github.com/google/uuid value for persistence.
func (u UUID) Raw() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

func (u UUID) IsZero() bool {
	return u.id == uuid.Nil
}

func (u UUID) Validate() error {
	if u.IsZero() {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// MarshalText renders the identifier in JSON payloads and history metadata.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.id.String()), nil
}

// PtrEqual compares two optional identifiers; two nils are equal.
func PtrEqual(a, b *UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}

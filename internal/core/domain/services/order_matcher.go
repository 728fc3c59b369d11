package services

import (
	"fmt"
	"slices"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"
)

var (
	// ErrAmbiguousMatch is returned when several available units share a canonical key.
	ErrAmbiguousMatch = fmt.Errorf("%w: cannot uniquely determine order", errs.ErrConflict)
	// ErrNoAvailableUnit is returned when no available unit matches an order.
	ErrNoAvailableUnit = fmt.Errorf("%w: not found among available units", errs.ErrObjectNotFound)
)

// OrderMatcher resolves external order identifiers to units.
//
// Only units that are stored or waiting for shipping and are not attached to
// an open or in-progress task take part in matching. Barcodes are compared by
// their canonical key (see kernel.MatchKey), so "0012345600" and "123456"
// resolve to the same unit. A key shared by two or more candidates is
// ambiguous and never resolves.
type OrderMatcher struct {
	index     map[string]*unit.Unit
	ambiguous map[string][]kernel.UUID
}

// NewOrderMatcher indexes candidates, skipping every unit listed in attached.
func NewOrderMatcher(candidates []*unit.Unit, attached []kernel.UUID) OrderMatcher {
	busy := make(map[kernel.UUID]struct{}, len(attached))
	for _, id := range attached {
		busy[id] = struct{}{}
	}

	m := OrderMatcher{
		index:     make(map[string]*unit.Unit, len(candidates)),
		ambiguous: make(map[string][]kernel.UUID),
	}
	for _, u := range candidates {
		if u.Validate() != nil || !isMatchable(u.Status()) {
			continue
		}
		if _, ok := busy[u.ID()]; ok {
			continue
		}
		key := u.Barcode().MatchKey()
		if key == "" {
			continue
		}
		if ids, ok := m.ambiguous[key]; ok {
			m.ambiguous[key] = append(ids, u.ID())
			continue
		}
		if prev, ok := m.index[key]; ok {
			delete(m.index, key)
			m.ambiguous[key] = []kernel.UUID{prev.ID(), u.ID()}
			continue
		}
		m.index[key] = u
	}
	return m
}

// Match returns the unit whose canonical key equals that of raw.
//
// Returns:
//   - *unit.Unit: the only available unit with that key
//   - error: kernel.ErrBarcodeIsEmpty when raw has no digits, ErrAmbiguousMatch
//     when several units share the key, ErrNoAvailableUnit when none does
func (m OrderMatcher) Match(raw string) (*unit.Unit, error) {
	key := kernel.MatchKey(raw)
	if key == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("order barcode", kernel.ErrBarcodeIsEmpty)
	}
	if ids, ok := m.ambiguous[key]; ok {
		return nil, fmt.Errorf("%w: %q matches %d units", ErrAmbiguousMatch, raw, len(ids))
	}
	u, ok := m.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoAvailableUnit, raw)
	}
	return u, nil
}

// Len returns the number of units that resolve unambiguously.
func (m OrderMatcher) Len() int {
	return len(m.index)
}

// AmbiguousKeys returns the canonical keys that resolve to more than one unit.
func (m OrderMatcher) AmbiguousKeys() []string {
	keys := make([]string, 0, len(m.ambiguous))
	for k := range m.ambiguous {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isMatchable(s unit.Status) bool {
	return s == unit.Stored || s == unit.Shipping
}

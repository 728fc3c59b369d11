// Package pgutil holds column helpers shared by the repositories.
package pgutil

import (
	"encoding/json"

	"warehouse/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray binds ids as a text array. Use it as "col = ANY(?::uuid[])".
func UUIDArray(ids []kernel.UUID) any {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return pq.Array(out)
}

// RawIDs converts ids for IN clauses.
func RawIDs(ids []kernel.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Raw())
	}
	return out
}

// MarshalMeta encodes a metadata map for a jsonb column. An empty map is stored as {}.
func MarshalMeta(meta map[string]any) ([]byte, error) {
	if len(meta) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

// UnmarshalMeta decodes a jsonb column. Numbers come back as float64.
func UnmarshalMeta(raw []byte) (map[string]any, error) {
	meta := make(map[string]any)
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

package persist

import (
	"context"
	"encoding/json"
)

// Backend is a pluggable key-value store holding serialized records. Any
// implementation satisfying Get/Set/Remove works: browser storage bridges,
// files, databases, test doubles.
type Backend interface {
	// Get returns the serialized record stored under name, reporting absence
	// via ok rather than an error.
	Get(ctx context.Context, name string) (data []byte, ok bool, err error)
	Set(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}

// Record is the persisted envelope: a named, versioned snapshot of the
// partialized state projection.
type Record struct {
	Name       string          `json:"name"`
	Version    int             `json:"version"`
	SnapshotID string          `json:"snapshot_id,omitempty"`
	State      json.RawMessage `json:"state"`
}

// Package store persists and retrieves per-invocation task results keyed by
// task identity and invocation fingerprint.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

// Entry is one stored result for a (task identity, fingerprint) pair.
type Entry struct {
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	// Payload is the task body's result. The format is opaque to other
	// components.
	Payload json.RawMessage `json:"payload"`
	// StoredAt is when this entry was written, used as the stand-in output
	// timestamp for tasks that declare no output paths.
	StoredAt time.Time `json:"stored_at"`
	// Params is the resolved parameter snapshot for the run that produced
	// this entry.
	Params params.Values `json:"params"`
}

// ResultStore defines the contract for result persistence.
//
// The store exclusively owns the cache namespace for a given task identity.
// The cache is strictly an optimization: a corrupt or unreadable entry is a
// miss, never a hard failure. If two processes race to populate the same
// entry, last writer wins; results for equal fingerprints are expected to be
// equal (idempotence precondition on task bodies), so no locking is needed.
type ResultStore interface {
	// Load returns the stored entry, or nil with no error when the entry is
	// absent or cannot be deserialized.
	Load(ctx context.Context, identity string, fp fingerprint.Fingerprint) (*Entry, error)

	// Save persists an entry, replacing any prior entry for the same pair.
	// The replacement is atomic: a crash mid-write never leaves a corrupted
	// readable entry.
	Save(ctx context.Context, identity string, entry *Entry) error

	// Purge removes every entry stored under the given identity.
	Purge(ctx context.Context, identity string) error
}

// Package checkpoint provides the Store abstraction the engine uses to
// durably remember the highest block number it has fully processed, plus
// three concrete backends: an in-memory store for tests, a flat JSON file,
// and a generic database/sql-backed relational store.
package checkpoint

import "context"

// Store persists and retrieves the indexer's progress watermark. The
// engine is the sole writer; concurrent reads are permitted for
// observability. Implementations MUST be safe for concurrent use.
//
// The engine, not the Store, enforces that Save is only called with a
// value strictly greater than the last successfully saved one;
// implementations MAY additionally reject non-monotonic writes.
type Store interface {
	// Load retrieves the highest successfully saved block number. ok is
	// false if nothing has ever been saved.
	Load(ctx context.Context) (block uint64, ok bool, err error)

	// Save durably persists block as the new watermark.
	Save(ctx context.Context, block uint64) error

	// Close flushes and releases any underlying resources. Save and Load
	// must not be called after Close returns.
	Close() error
}

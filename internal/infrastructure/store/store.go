package store

import (
	"context"
	"encoding/json"
)

// Entry is a single child node returned by a windowed listing.
type Entry struct {
	// Key is the node's own key (the last path segment).
	Key string

	// Value is the raw JSON stored at the node.
	Value json.RawMessage
}

// Store is the narrow interface to the key-ordered hierarchical store.
//
// Paths are slash-separated (e.g. "user-01/aktuator/data/16"). Writing one
// path never disturbs sibling paths; child listings are ordered by key.
//
// All methods are blocking, bounded by a per-call timeout, and retryable:
// transient I/O failures are reported as ErrUnavailable, and retries are
// the caller's responsibility.
type Store interface {
	// Get returns the raw JSON value at the exact path.
	// Returns ErrNotFound if no node exists there.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set writes value at path, replacing the node and anything beneath it.
	Set(ctx context.Context, path string, value any) error

	// Merge applies fields onto the object stored at path. Fields absent
	// from the update are left unchanged; if no node exists the update
	// becomes the initial object. Never destructive.
	Merge(ctx context.Context, path string, fields map[string]any) error

	// Delete removes the node at path and its entire subtree.
	// Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// Children returns the direct children of path ordered ascending by
	// key. When lastN > 0 only the last N children (highest keys) are
	// returned, still in ascending order. An empty or missing path yields
	// an empty slice, not an error.
	Children(ctx context.Context, path string, lastN int) ([]Entry, error)
}

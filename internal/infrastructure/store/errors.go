package store

import "errors"

// Domain errors for the store package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, store.ErrUnavailable) {
//	    // retry with backoff
//	}
var (
	// ErrNotFound is returned when no node exists at the requested path.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable is returned for transient I/O and timeout failures.
	// Callers may retry the operation with backoff.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrInvalidPath is returned when a path is empty or contains a
	// character outside the store's key alphabet.
	ErrInvalidPath = errors.New("store: invalid path")

	// ErrNotObject is returned when Merge targets a node that does not
	// hold a JSON object.
	ErrNotObject = errors.New("store: value is not an object")
)

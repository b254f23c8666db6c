package notify

import "errors"

var (
	// ErrInvalidUser indicates a user id unusable as a store key.
	ErrInvalidUser = errors.New("notify: invalid user id")

	// ErrNotFound indicates the named entry does not exist.
	ErrNotFound = errors.New("notify: entry not found")
)

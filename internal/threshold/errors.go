package threshold

import "errors"

// Domain errors for the threshold package.
var (
	// ErrNoThresholds is returned when a user has no stored threshold set.
	ErrNoThresholds = errors.New("threshold: not configured")

	// ErrInvalidUser is returned when a user id is empty or unusable as a
	// store key.
	ErrInvalidUser = errors.New("threshold: invalid user id")

	// ErrInvalidUpdate is returned when an update is empty or malformed.
	ErrInvalidUpdate = errors.New("threshold: invalid update")
)

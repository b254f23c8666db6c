package actuator

import "errors"

var (
	// ErrInvalidUser indicates a user id unusable as a store key.
	ErrInvalidUser = errors.New("actuator: invalid user id")

	// ErrInvalidPin indicates a negative actuator pin number.
	ErrInvalidPin = errors.New("actuator: invalid pin")

	// ErrInvalidState indicates a state value other than 0 or 1.
	ErrInvalidState = errors.New("actuator: invalid state")
)

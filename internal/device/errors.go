package device

import "errors"

var (
	// ErrInvalidUser indicates a user id unusable as a store key.
	ErrInvalidUser = errors.New("device: invalid user id")

	// ErrInvalidSerial indicates an empty or unusable serial number.
	ErrInvalidSerial = errors.New("device: invalid serial")

	// ErrDuplicate indicates a serial that is already registered.
	ErrDuplicate = errors.New("device: serial already registered")

	// ErrNotFound indicates the named device is not registered.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidUpdate indicates an update with no fields or an unknown
	// status value.
	ErrInvalidUpdate = errors.New("device: invalid update")
)

package control

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode indicates an actuation with an unknown provenance
	// mode.
	ErrInvalidMode = errors.New("control: invalid mode")

	// ErrSchedulerStopped indicates an operation on a stopped scheduler.
	ErrSchedulerStopped = errors.New("control: scheduler stopped")

	// ErrUnknownUser indicates a trigger for a user the scheduler has no
	// binding for.
	ErrUnknownUser = errors.New("control: unknown user")
)

// PartialFailureError reports an actuation whose state write succeeded
// but whose audit log append failed. The state change is authoritative
// and is never reverted; the audit trail is missing one entry.
type PartialFailureError struct {
	ActuatorID int
	NewState   int
	Err        error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("control: actuator %d set to %d but audit log failed: %v",
		e.ActuatorID, e.NewState, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

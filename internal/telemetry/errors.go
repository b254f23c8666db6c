package telemetry

import "errors"

// Domain errors for the telemetry package.
var (
	// ErrNoSamples is returned when a station's series has no entries.
	ErrNoSamples = errors.New("telemetry: no samples")

	// ErrInvalidSample is returned when a sample fails boundary validation.
	ErrInvalidSample = errors.New("telemetry: invalid sample")

	// ErrInvalidStation is returned when a station id is empty or unusable
	// as a store key.
	ErrInvalidStation = errors.New("telemetry: invalid station id")
)

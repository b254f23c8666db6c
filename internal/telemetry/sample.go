package telemetry

import (
	"fmt"
	"math"
)

// Sample is one timestamped multi-quantity reading from a station.
//
// Samples are immutable once written. The JSON field names are the wire
// and store format produced by the field devices.
type Sample struct {
	// Timestamp is the reading time in epoch seconds.
	Timestamp int64 `json:"timestamp"`

	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`

	// Humidity as relative humidity percent.
	Humidity float64 `json:"humidity"`

	// Pressure in hPa.
	Pressure float64 `json:"pressure"`

	// DewPoint in degrees Celsius.
	DewPoint float64 `json:"dew"`

	// Voltage is the station battery voltage.
	Voltage float64 `json:"volt"`
}

// Validate checks a sample for storability.
//
// Returns:
//   - error: ErrInvalidSample (wrapped with detail) or nil
func (s Sample) Validate() error {
	if s.Timestamp <= 0 {
		return fmt.Errorf("%w: timestamp must be positive epoch seconds", ErrInvalidSample)
	}
	for name, v := range map[string]float64{
		"temperature": s.Temperature,
		"humidity":    s.Humidity,
		"pressure":    s.Pressure,
		"dew":         s.DewPoint,
		"volt":        s.Voltage,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidSample, name)
		}
	}
	return nil
}

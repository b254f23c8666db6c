// Package telemetry stores and reads station sensor samples.
//
// A sample is one timestamped reading of temperature, humidity, pressure,
// dew point and battery voltage. Samples are immutable: the adapter only
// ever appends to a station's series and reads windows from its tail.
//
// Series keys are timestamp-derived with a random suffix, so the store's
// key ordering is time ordering and concurrent appends cannot collide.
package telemetry

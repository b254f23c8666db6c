package control

import (
	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/telemetry"
	"github.com/canopylabs/canopy-core/internal/threshold"
)

// Evaluate compares one sample against a user's bounds and returns the
// actuator changes needed to bring state in line.
//
// The rules, per mapping:
//   - value above max drives the polarity's above-max state; value
//     below min drives the opposite state.
//   - value inside [min, max] is the deadband: no decision, whatever
//     the current state. The actuator holds its last commanded state
//     until the opposite bound is crossed.
//   - a decision is only emitted when the target differs from the
//     current state, so re-evaluating unchanged inputs is a no-op.
//   - quantities the sample does not carry, and mappings without a
//     corresponding bound pair, are skipped.
//
// Evaluate is pure and safe to call concurrently. A nil threshold set
// yields no decisions.
func Evaluate(sample telemetry.Sample, bounds *threshold.Set, current actuator.State, mappings []Mapping) []Decision {
	if bounds == nil {
		return nil
	}

	var decisions []Decision
	for _, m := range mappings {
		value, ok := sampleValue(sample, m.Quantity)
		if !ok {
			continue
		}
		min, max, ok := quantityBounds(bounds, m.Quantity)
		if !ok {
			continue
		}

		var target int
		switch {
		case value > max:
			target = aboveMaxState(m.Polarity)
		case value < min:
			target = 1 - aboveMaxState(m.Polarity)
		default:
			continue // inside the deadband
		}

		if current[m.ActuatorID] == target {
			continue // already where the bounds want it
		}
		decisions = append(decisions, Decision{
			ActuatorID: m.ActuatorID,
			NewState:   target,
			Quantity:   m.Quantity,
		})
	}
	return decisions
}

// sampleValue extracts the mapped quantity from a sample. Quantities a
// station does not report (light, soil moisture) are absent rather
// than zero, so thresholds on them never misfire.
func sampleValue(s telemetry.Sample, q Quantity) (float64, bool) {
	switch q {
	case QuantityTemperature:
		return s.Temperature, true
	case QuantityHumidity:
		return s.Humidity, true
	default:
		return 0, false
	}
}

// quantityBounds returns the min/max pair for a quantity.
func quantityBounds(b *threshold.Set, q Quantity) (min, max float64, ok bool) {
	switch q {
	case QuantityTemperature:
		return b.TemperatureMin, b.TemperatureMax, true
	case QuantityHumidity:
		return b.HumidityMin, b.HumidityMax, true
	case QuantityLight:
		return b.LightMin, b.LightMax, true
	case QuantityMoisture:
		return b.MoistureMin, b.MoistureMax, true
	default:
		return 0, 0, false
	}
}

// aboveMaxState returns the state a max crossing drives for a
// polarity. An unset polarity defaults to AboveMaxOn.
func aboveMaxState(p Polarity) int {
	if p == AboveMaxOff {
		return 0
	}
	return 1
}

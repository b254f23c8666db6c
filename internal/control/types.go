package control

// Quantity is a monitored environmental quantity a mapping can bind to
// an actuator.
type Quantity string

const (
	QuantityTemperature Quantity = "temperature"
	QuantityHumidity    Quantity = "humidity"
	QuantityLight       Quantity = "light"
	QuantityMoisture    Quantity = "moisture"
)

// Polarity selects which state a max-bound crossing drives. Crossing
// the min bound always drives the opposite state.
type Polarity string

const (
	// AboveMaxOn turns the actuator on when the quantity exceeds max,
	// off when it falls below min. Suits cooling fans and vents.
	AboveMaxOn Polarity = "above_max_on"

	// AboveMaxOff turns the actuator off when the quantity exceeds max,
	// on when it falls below min. Suits heaters and irrigation pumps.
	AboveMaxOff Polarity = "above_max_off"
)

// Mapping binds one monitored quantity to one actuator pin.
type Mapping struct {
	Quantity   Quantity
	ActuatorID int
	Polarity   Polarity
}

// Decision is one actuator state change the evaluator asks for.
type Decision struct {
	ActuatorID int
	NewState   int
	Quantity   Quantity
}

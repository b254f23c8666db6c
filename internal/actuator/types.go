package actuator

// Mode records what initiated a state change.
type Mode string

const (
	// ModeManual marks a change requested directly by a user.
	ModeManual Mode = "manual"

	// ModeAuto marks a change decided by the control loop.
	ModeAuto Mode = "auto"
)

// Valid reports whether the mode is a known provenance value.
func (m Mode) Valid() bool {
	return m == ModeManual || m == ModeAuto
}

// State maps actuator pin numbers to their binary state (0 off, 1 on).
type State map[int]int

// On reports whether the given pin is currently on. Unknown pins
// report off.
func (s State) On(pin int) bool {
	return s[pin] == 1
}

// Log is one audit record of an actuator state change.
type Log struct {
	ID         string `json:"-"`
	ActuatorID int    `json:"pinId"`
	NewState   int    `json:"state"`
	Mode       Mode   `json:"mode"`
	Timestamp  int64  `json:"timestamp"` // milliseconds since epoch
}

package mqtt

import "fmt"

// Topic prefixes for the Canopy MQTT hierarchy. Field stations publish
// telemetry; the core publishes actuator state and its own liveness.
const (
	// TopicPrefix is the base for all Canopy topics.
	TopicPrefix = "canopy"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "canopy/system"
)

// Topics provides builders for Canopy MQTT topics. Using these helpers
// keeps topic naming consistent across the codebase.
type Topics struct{}

// TelemetryStation returns the topic one station publishes samples on.
//
// Example: canopy/telemetry/id-03
func (Topics) TelemetryStation(stationID string) string {
	return fmt.Sprintf("%s/telemetry/%s", TopicPrefix, stationID)
}

// AllTelemetry returns the wildcard pattern matching every station's
// telemetry topic.
func (Topics) AllTelemetry() string {
	return TopicPrefix + "/telemetry/+"
}

// ActuatorState returns the retained topic carrying one actuator's
// current state.
//
// Example: canopy/actuator/user-01/16/state
func (Topics) ActuatorState(userID string, pin int) string {
	return fmt.Sprintf("%s/actuator/%s/%d/state", TopicPrefix, userID, pin)
}

// SystemStatus returns the retained topic carrying the core's
// online/offline status, including its last will.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Package mqtt wraps the paho MQTT client for Canopy Core.
//
// Field stations publish telemetry on canopy/telemetry/{stationId};
// the core subscribes with a single wildcard subscription and publishes
// its own liveness (with a Last Will for crash detection) on
// canopy/system/status. Actuator state mirrors go out retained on
// canopy/actuator/{userId}/{pin}/state.
//
// The wrapper adds connection state tracking, automatic re-subscription
// after reconnect, payload size limits, and panic recovery around
// message handlers. Topic strings are built through the Topics helpers
// so the hierarchy stays consistent across the codebase.
package mqtt

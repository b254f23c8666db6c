// Package threshold manages per-user environmental bounds.
//
// A threshold set holds min/max pairs for temperature, humidity, light
// level, and soil moisture. Sets are stored fully resolved: a user's
// first partial update is applied onto the built-in defaults, and later
// updates merge only the fields they carry, so readers never see a
// missing bound.
//
// The control loop consumes sets read-only; writes arrive from the
// query and ingest surfaces.
package threshold

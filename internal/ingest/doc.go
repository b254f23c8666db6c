// Package ingest feeds station telemetry from the MQTT bus into the
// sample store. Each stored sample optionally fans out to the
// time-series mirror and triggers an immediate control cycle for the
// users bound to the reporting station, so actuation reacts to fresh
// readings instead of waiting for the next scheduled pass.
package ingest

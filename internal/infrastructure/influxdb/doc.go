// Package influxdb mirrors Canopy telemetry into a time-series bucket.
//
// The hierarchical store keeps only a sliding window of samples per
// station; this optional mirror gives dashboards the full history for
// charting and duty-cycle analysis. It wraps the official
// influxdb-client-go v2 library.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched per the configured batch_size and flush_interval; async write
// failures surface through the SetOnError callback.
//
// The mirror is best-effort by contract: a write failure here never
// affects ingestion into the hierarchical store or the control loop.
package influxdb

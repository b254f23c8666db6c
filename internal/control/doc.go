// Package control is the threshold-driven actuation pipeline.
//
// Evaluate is the pure decision function: one sample, one threshold
// set, and the current actuator state in, a list of required state
// changes out. The range between min and max is a deadband, and a
// decision is only emitted when the target state differs from the
// current one, so steady conditions never flap an actuator.
//
// Controller applies decisions: a single-pin state write followed by
// an audit log append, with an audit failure surfaced as a partial
// failure rather than a rollback. Scheduler drives RunCycle on a fixed
// cadence plus on-demand triggers, with exactly one in-flight cycle
// per user, backoff on transient store failures, and a per-user
// circuit breaker.
package control

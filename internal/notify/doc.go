// Package notify persists per-user audit logs and notifications.
//
// Actuator state changes are appended to {user}/actuator_logs and
// user-facing messages to {user}/notifications. Both collections use
// time-ordered keys (zero-padded millisecond timestamp plus a random
// suffix) so store order matches chronological order.
//
// Appends assign both the entry key and the timestamp, keeping the two
// consistent with each other.
package notify

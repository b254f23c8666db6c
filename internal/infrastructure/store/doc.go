// Package store provides the key-ordered hierarchical store backing all
// persisted Canopy state.
//
// The store is a tree of JSON leaves addressed by slash-separated paths:
//
//	{userId}/devices/{serial}
//	{userId}/thresholds
//	{userId}/aktuator/data/{pinId}
//	{userId}/actuator_logs/{id}
//	{userId}/notifications/{id}
//	auto_weather_stat/{stationId}/data/{orderedKey}
//
// # Semantics
//
//   - Set replaces a node and its subtree; sibling paths are untouched
//   - Merge applies a partial object update, never destructive
//   - Children lists direct children ascending by key, optionally
//     windowed to the last N keys
//   - Transient I/O failures surface as ErrUnavailable; retrying is the
//     caller's job
//
// # Implementations
//
//   - SQLiteStore: one row per leaf in a nodes table (production)
//   - MemoryStore: in-process map with identical semantics (tests,
//     ephemeral deployments)
//
// # Thread Safety
//
// Both implementations are safe for concurrent use. The store itself does
// not serialise logically-related writes; the control scheduler's
// one-cycle-per-user discipline does.
package store

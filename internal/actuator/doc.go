// Package actuator reads and writes per-user actuator state.
//
// Each actuator is a numbered pin holding a binary value, stored as its
// own node under {user}/aktuator/data/{pin}. Writes always target a
// single pin so independent actuators never race on a shared object.
//
// Audit records for state changes live in the notify package; this
// package only covers the live state.
package actuator

// Package database manages the SQLite connection backing the hierarchical
// store.
//
// It provides:
//   - Connection lifecycle (open, health check, close)
//   - WAL mode and busy-timeout pragmas
//   - Embedded schema migrations (see the migrations package)
//
// SQLite is configured with a single writer connection; concurrent readers
// are served through WAL mode. All higher-level access goes through the
// store package, which implements the narrow hierarchical interface on top
// of this connection.
package database

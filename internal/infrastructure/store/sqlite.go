package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// defaultOpTimeout bounds a store call when no timeout is configured.
const defaultOpTimeout = 10 * time.Second

// SQLiteStore implements Store on a single nodes table.
//
// Each leaf is one row keyed by its full path, with the parent path and
// own key denormalised so child listings stay on the (parent, key) index.
// Key ordering is SQLite's default BLOB/text collation, which matches the
// lexicographic ordering the telemetry and audit keys are built for.
//
// Thread Safety: safe for concurrent use; SQLite serialises writers.
type SQLiteStore struct {
	db        *sql.DB
	opTimeout time.Duration
}

// NewSQLiteStore creates a store backed by an open SQLite connection.
//
// Parameters:
//   - db: Open connection (schema applied via migrations)
//   - opTimeout: Per-call timeout; 0 uses a 10s default
//
// Returns:
//   - *SQLiteStore: Store ready for use
func NewSQLiteStore(db *sql.DB, opTimeout time.Duration) *SQLiteStore {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &SQLiteStore{db: db, opTimeout: opTimeout}
}

// Get returns the raw JSON value at the exact path.
func (s *SQLiteStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM nodes WHERE path = ?", path,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, s.wrapIO("reading node", err)
	}

	return json.RawMessage(value), nil
}

// Set writes value at path, replacing the node and anything beneath it.
func (s *SQLiteStore) Set(ctx context.Context, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value for %s: %w", path, err)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapIO("starting transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	// Replacing a node replaces its subtree as well.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM nodes WHERE path = ? OR path LIKE ? ESCAPE '\\'",
		path, likePrefix(path),
	); err != nil {
		return s.wrapIO("clearing subtree", err)
	}

	parent, key := splitPath(path)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (path, parent, key, value, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		path, parent, key, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return s.wrapIO("writing node", err)
	}

	if err := tx.Commit(); err != nil {
		return s.wrapIO("committing write", err)
	}
	return nil
}

// Merge applies fields onto the object stored at path inside one
// transaction. Absent fields are preserved; a missing node is created
// from the update alone.
func (s *SQLiteStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapIO("starting transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	merged := make(map[string]any, len(fields))

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT value FROM nodes WHERE path = ?", path,
	).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First write: the update is the initial object.
	case err != nil:
		return s.wrapIO("reading node", err)
	default:
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			return fmt.Errorf("%w: %s", ErrNotObject, path)
		}
	}

	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshalling merged value for %s: %w", path, err)
	}

	parent, key := splitPath(path)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (path, parent, key, value, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		path, parent, key, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return s.wrapIO("writing node", err)
	}

	if err := tx.Commit(); err != nil {
		return s.wrapIO("committing merge", err)
	}
	return nil
}

// Delete removes the node at path and its entire subtree.
func (s *SQLiteStore) Delete(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM nodes WHERE path = ? OR path LIKE ? ESCAPE '\\'",
		path, likePrefix(path),
	); err != nil {
		return s.wrapIO("deleting subtree", err)
	}
	return nil
}

// Children returns the direct children of path ordered ascending by key.
func (s *SQLiteStore) Children(ctx context.Context, path string, lastN int) ([]Entry, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := "SELECT key, value FROM nodes WHERE parent = ? ORDER BY key ASC"
	args := []any{path}
	if lastN > 0 {
		// Take the highest N keys, then restore ascending order below.
		query = "SELECT key, value FROM nodes WHERE parent = ? ORDER BY key DESC LIMIT ?"
		args = append(args, lastN)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapIO("querying children", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var value string
		if err := rows.Scan(&e.Key, &value); err != nil {
			return nil, s.wrapIO("scanning child", err)
		}
		e.Value = json.RawMessage(value)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapIO("iterating children", err)
	}

	if lastN > 0 {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	return entries, nil
}

// bound derives a context bounded by the per-call timeout.
func (s *SQLiteStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// wrapIO maps a database error to the retryable unavailable sentinel.
func (s *SQLiteStore) wrapIO(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// likePrefix builds a LIKE pattern matching the subtree beneath a path,
// with LIKE metacharacters in the path escaped.
func likePrefix(path string) string {
	escaped := ""
	for _, r := range path {
		switch r {
		case '%', '_', '\\':
			escaped += "\\" + string(r)
		default:
			escaped += string(r)
		}
	}
	return escaped + "/%"
}

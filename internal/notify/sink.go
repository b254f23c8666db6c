package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

const (
	logsKey          = "actuator_logs"
	notificationsKey = "notifications"
)

// Sink appends and manages per-user audit logs and notifications.
//
// Entries are keyed by a zero-padded millisecond timestamp plus a short
// random suffix, so key order matches chronological order and two
// entries written in the same millisecond never collide.
type Sink struct {
	store store.Store
	now   func() time.Time
}

// NewSink creates an audit and notification sink.
func NewSink(st store.Store) *Sink {
	return &Sink{store: st, now: time.Now}
}

// entryID builds a sortable unique key from a millisecond timestamp.
func entryID(ms int64) string {
	return fmt.Sprintf("%013d-%s", ms, uuid.NewString()[:8])
}

// AppendLog records one actuator state change in the user's audit
// trail. The log's ID and Timestamp are assigned here.
//
// Returns:
//   - actuator.Log: The stored record, with ID and Timestamp filled in
//   - error: ErrInvalidUser or a store error
func (s *Sink) AppendLog(ctx context.Context, userID string, entry actuator.Log) (actuator.Log, error) {
	if err := validateUser(userID); err != nil {
		return actuator.Log{}, err
	}

	entry.Timestamp = s.now().UnixMilli()
	entry.ID = entryID(entry.Timestamp)

	path := store.Join(userID, logsKey, entry.ID)
	if err := s.store.Set(ctx, path, entry); err != nil {
		return actuator.Log{}, fmt.Errorf("appending actuator log for %s: %w", userID, err)
	}
	return entry, nil
}

// Logs returns a user's audit trail, newest first. A user with no logs
// gets an empty slice. When limit is positive only the newest limit
// entries are returned.
func (s *Sink) Logs(ctx context.Context, userID string, limit int) ([]actuator.Log, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}

	entries, err := s.store.Children(ctx, store.Join(userID, logsKey), limit)
	if errors.Is(err, store.ErrNotFound) {
		return []actuator.Log{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading actuator logs for %s: %w", userID, err)
	}

	logs := make([]actuator.Log, 0, len(entries))
	for _, e := range entries {
		var l actuator.Log
		if err := json.Unmarshal(e.Value, &l); err != nil {
			continue // malformed record, skip rather than fail the listing
		}
		l.ID = e.Key
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Timestamp != logs[j].Timestamp {
			return logs[i].Timestamp > logs[j].Timestamp
		}
		return logs[i].ID > logs[j].ID
	})
	return logs, nil
}

// PurgeLogs removes a user's entire audit trail.
func (s *Sink) PurgeLogs(ctx context.Context, userID string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.Join(userID, logsKey)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("purging actuator logs for %s: %w", userID, err)
	}
	return nil
}

// AppendNotification stores a new unread notification for a user.
//
// Returns:
//   - Notification: The stored record, with ID and Timestamp filled in
//   - error: ErrInvalidUser or a store error
func (s *Sink) AppendNotification(ctx context.Context, userID, message string) (Notification, error) {
	if err := validateUser(userID); err != nil {
		return Notification{}, err
	}

	n := Notification{
		Message:   message,
		Read:      false,
		Timestamp: s.now().UnixMilli(),
	}
	n.ID = entryID(n.Timestamp)

	path := store.Join(userID, notificationsKey, n.ID)
	if err := s.store.Set(ctx, path, n); err != nil {
		return Notification{}, fmt.Errorf("appending notification for %s: %w", userID, err)
	}
	return n, nil
}

// Notifications returns a user's notifications, newest first. When
// limit is positive only the newest limit entries are returned.
func (s *Sink) Notifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}

	entries, err := s.store.Children(ctx, store.Join(userID, notificationsKey), limit)
	if errors.Is(err, store.ErrNotFound) {
		return []Notification{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading notifications for %s: %w", userID, err)
	}

	out := make([]Notification, 0, len(entries))
	for _, e := range entries {
		var n Notification
		if err := json.Unmarshal(e.Value, &n); err != nil {
			continue
		}
		n.ID = e.Key
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MarkRead flips a notification's read flag without touching its
// message or timestamp.
func (s *Sink) MarkRead(ctx context.Context, userID, id string) error {
	if err := validateUser(userID); err != nil {
		return err
	}

	path := store.Join(userID, notificationsKey, id)

	// Merge would create a missing node, so check existence first.
	if _, err := s.store.Get(ctx, path); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, id)
		}
		return fmt.Errorf("reading notification %s for %s: %w", id, userID, err)
	}

	if err := s.store.Merge(ctx, path, map[string]any{"read": true}); err != nil {
		return fmt.Errorf("marking notification %s read for %s: %w", id, userID, err)
	}
	return nil
}

// DeleteNotification removes a single notification.
func (s *Sink) DeleteNotification(ctx context.Context, userID, id string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	path := store.Join(userID, notificationsKey, id)
	if err := s.store.Delete(ctx, path); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting notification %s for %s: %w", id, userID, err)
	}
	return nil
}

// PurgeNotifications removes all of a user's notifications.
func (s *Sink) PurgeNotifications(ctx context.Context, userID string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.Join(userID, notificationsKey)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("purging notifications for %s: %w", userID, err)
	}
	return nil
}

func validateUser(userID string) error {
	if userID == "" || strings.ContainsRune(userID, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	if err := store.ValidatePath(userID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

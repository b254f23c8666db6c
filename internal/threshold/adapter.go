package threshold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

// thresholdsKey is the node under a user's root holding the threshold set.
const thresholdsKey = "thresholds"

// Adapter reads and writes per-user threshold configuration.
//
// The stored set is always fully resolved: the first update is applied
// onto the complete default set, and every later update merges only the
// fields it carries.
type Adapter struct {
	store store.Store
}

// NewAdapter creates a threshold store adapter.
func NewAdapter(st store.Store) *Adapter {
	return &Adapter{store: st}
}

// Thresholds returns a user's stored threshold set.
//
// Returns:
//   - *Set: The fully-resolved set
//   - error: ErrNoThresholds when the user has never configured bounds
func (a *Adapter) Thresholds(ctx context.Context, userID string) (*Set, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}

	raw, err := a.store.Get(ctx, store.Join(userID, thresholdsKey))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNoThresholds, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading thresholds for %s: %w", userID, err)
	}

	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decoding thresholds for %s: %w", userID, err)
	}
	return &set, nil
}

// Update merges a partial update into a user's threshold set.
//
// Fields absent from the update are left unchanged. If the user has no
// stored set yet, the update is applied onto the complete default set so
// the stored object is fully resolved from its first write.
//
// Returns:
//   - error: ErrInvalidUpdate for an empty update, or a store error
func (a *Adapter) Update(ctx context.Context, userID string, update Update) error {
	if err := validateUser(userID); err != nil {
		return err
	}

	fields := update.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidUpdate)
	}

	path := store.Join(userID, thresholdsKey)

	_, err := a.store.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		// First write: resolve against defaults so no field is ever absent.
		set := DefaultSet()
		update.applyTo(&set)
		if err := a.store.Set(ctx, path, set); err != nil {
			return fmt.Errorf("writing initial thresholds for %s: %w", userID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading thresholds for %s: %w", userID, err)
	}

	if err := a.store.Merge(ctx, path, fields); err != nil {
		return fmt.Errorf("merging thresholds for %s: %w", userID, err)
	}
	return nil
}

// validateUser checks a user id is usable as a single store key.
func validateUser(userID string) error {
	if userID == "" || strings.ContainsRune(userID, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	if err := store.ValidatePath(userID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

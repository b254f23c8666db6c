package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

// Actuator state lives under {user}/aktuator/data/{pin}. The segment
// names are fixed by the existing store layout shared with field
// devices, so they are kept verbatim.
const (
	actuatorRoot = "aktuator"
	actuatorData = "data"
)

// Adapter reads and writes per-user actuator state.
type Adapter struct {
	store store.Store
}

// NewAdapter creates an actuator store adapter.
func NewAdapter(st store.Store) *Adapter {
	return &Adapter{store: st}
}

// State returns the current state of every known actuator for a user.
//
// A user with no actuator nodes yet gets an empty map, not an error.
func (a *Adapter) State(ctx context.Context, userID string) (State, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}

	entries, err := a.store.Children(ctx, store.Join(userID, actuatorRoot, actuatorData), 0)
	if errors.Is(err, store.ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading actuator state for %s: %w", userID, err)
	}

	state := make(State, len(entries))
	for _, e := range entries {
		pin, err := strconv.Atoi(e.Key)
		if err != nil {
			continue // foreign key under the data node, skip
		}
		var v int
		if err := json.Unmarshal(e.Value, &v); err != nil {
			continue
		}
		state[pin] = v
	}
	return state, nil
}

// SetState writes a single actuator's state without touching its
// siblings. Concurrent writes to different pins never clobber each
// other because each pin is its own store node.
func (a *Adapter) SetState(ctx context.Context, userID string, pin, state int) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if pin < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	if state != 0 && state != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}

	path := store.Join(userID, actuatorRoot, actuatorData, strconv.Itoa(pin))
	if err := a.store.Set(ctx, path, state); err != nil {
		return fmt.Errorf("writing actuator %d for %s: %w", pin, userID, err)
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

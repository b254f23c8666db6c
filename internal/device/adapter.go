package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

const devicesKey = "devices"

// Adapter manages a user's registered field devices.
type Adapter struct {
	store store.Store
	now   func() time.Time
}

// NewAdapter creates a device registry adapter.
func NewAdapter(st store.Store) *Adapter {
	return &Adapter{store: st, now: time.Now}
}

// Register adds a device under its sanitized serial. Registration
// fails if the serial is already taken; re-registering must be an
// explicit Remove then Register so a stray duplicate never silently
// overwrites an existing device.
//
// Returns:
//   - Device: The stored record, with Serial sanitized and CreatedAt set
//   - error: ErrInvalidSerial, ErrDuplicate, or a store error
func (a *Adapter) Register(ctx context.Context, userID string, dev Device) (Device, error) {
	if err := validateUser(userID); err != nil {
		return Device{}, err
	}

	serial, err := SanitizeSerial(dev.Serial)
	if err != nil {
		return Device{}, err
	}
	dev.Serial = serial

	if dev.Status == "" {
		dev.Status = StatusActive
	}
	if !dev.Status.Valid() {
		return Device{}, fmt.Errorf("%w: status %q", ErrInvalidUpdate, dev.Status)
	}
	dev.CreatedAt = a.now().UnixMilli()

	path := store.Join(userID, devicesKey, serial)
	if _, err := a.store.Get(ctx, path); err == nil {
		return Device{}, fmt.Errorf("%w: %s", ErrDuplicate, serial)
	} else if !errors.Is(err, store.ErrNotFound) {
		return Device{}, fmt.Errorf("checking device %s for %s: %w", serial, userID, err)
	}

	if err := a.store.Set(ctx, path, dev); err != nil {
		return Device{}, fmt.Errorf("registering device %s for %s: %w", serial, userID, err)
	}
	return dev, nil
}

// Update merges a partial update into a registered device.
func (a *Adapter) Update(ctx context.Context, userID, serial string, update Update) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	serial, err := SanitizeSerial(serial)
	if err != nil {
		return err
	}
	if update.Status != nil && !update.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidUpdate, *update.Status)
	}

	fields := update.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidUpdate)
	}

	path := store.Join(userID, devicesKey, serial)
	if _, err := a.store.Get(ctx, path); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, serial)
		}
		return fmt.Errorf("reading device %s for %s: %w", serial, userID, err)
	}

	if err := a.store.Merge(ctx, path, fields); err != nil {
		return fmt.Errorf("updating device %s for %s: %w", serial, userID, err)
	}
	return nil
}

// Remove unregisters a device. Removing an unknown serial is a no-op.
func (a *Adapter) Remove(ctx context.Context, userID, serial string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	serial, err := SanitizeSerial(serial)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, store.Join(userID, devicesKey, serial)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("removing device %s for %s: %w", serial, userID, err)
	}
	return nil
}

// List returns a user's registered devices sorted by serial.
func (a *Adapter) List(ctx context.Context, userID string) ([]Device, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}

	entries, err := a.store.Children(ctx, store.Join(userID, devicesKey), 0)
	if errors.Is(err, store.ErrNotFound) {
		return []Device{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing devices for %s: %w", userID, err)
	}

	devices := make([]Device, 0, len(entries))
	for _, e := range entries {
		var d Device
		if err := json.Unmarshal(e.Value, &d); err != nil {
			continue
		}
		d.Serial = e.Key
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Serial < devices[j].Serial })
	return devices, nil
}

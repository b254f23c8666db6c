package query

import (
	"context"
	"fmt"

	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/notify"
	"github.com/canopylabs/canopy-core/internal/telemetry"
)

// SampleWindower reads the most recent samples of a station's series.
type SampleWindower interface {
	Window(ctx context.Context, stationID string, n int) ([]telemetry.Sample, error)
}

// AuditReader lists a user's audit logs and notifications.
type AuditReader interface {
	Logs(ctx context.Context, userID string, limit int) ([]actuator.Log, error)
	Notifications(ctx context.Context, userID string, limit int) ([]notify.Notification, error)
}

// Facade is the read side consumed by presentation layers. Every call
// is a snapshot read with no write side effects.
type Facade struct {
	samples SampleWindower
	audit   AuditReader
}

// NewFacade creates a read facade over the telemetry and audit stores.
func NewFacade(samples SampleWindower, audit AuditReader) *Facade {
	return &Facade{samples: samples, audit: audit}
}

// WindowedSamples returns at most n of a station's most recent
// samples, oldest first. An empty or short series yields a short or
// empty slice, never an error.
func (f *Facade) WindowedSamples(ctx context.Context, stationID string, n int) ([]telemetry.Sample, error) {
	samples, err := f.samples.Window(ctx, stationID, n)
	if err != nil {
		return nil, fmt.Errorf("windowing samples for %s: %w", stationID, err)
	}
	return samples, nil
}

// Logs returns a user's actuator audit trail, newest first.
func (f *Facade) Logs(ctx context.Context, userID string) ([]actuator.Log, error) {
	return f.audit.Logs(ctx, userID, 0)
}

// Notifications returns a user's notifications, newest first.
func (f *Facade) Notifications(ctx context.Context, userID string) ([]notify.Notification, error) {
	return f.audit.Notifications(ctx, userID, 0)
}

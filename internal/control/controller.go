package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/notify"
	"github.com/canopylabs/canopy-core/internal/telemetry"
	"github.com/canopylabs/canopy-core/internal/threshold"
)

// Logger defines the logging interface used by the Controller and
// Scheduler. This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SampleSource provides the latest reading for a station.
type SampleSource interface {
	Latest(ctx context.Context, stationID string) (telemetry.Sample, error)
}

// ThresholdSource provides a user's configured bounds.
type ThresholdSource interface {
	Thresholds(ctx context.Context, userID string) (*threshold.Set, error)
}

// StateStore reads and writes per-user actuator state.
type StateStore interface {
	State(ctx context.Context, userID string) (actuator.State, error)
	SetState(ctx context.Context, userID string, pin, state int) error
}

// AuditSink records actuator logs and user notifications.
type AuditSink interface {
	AppendLog(ctx context.Context, userID string, entry actuator.Log) (actuator.Log, error)
	AppendNotification(ctx context.Context, userID, message string) (notify.Notification, error)
}

// StatePublisher mirrors applied actuator state to an external bus so
// dashboards and field devices see changes without polling the store.
// Publishing is best-effort; a failure never affects the actuation.
type StatePublisher interface {
	PublishState(userID string, pin, state int) error
}

// ActuationMirror copies applied state changes into a time-series
// store for duty-cycle analysis. Writes are batched and asynchronous;
// the mirror never affects the actuation.
type ActuationMirror interface {
	WriteActuation(userID string, pin, state int, mode string)
}

// Controller is the only component that mutates actuator state. Every
// state change it applies is paired with an audit log entry, and
// automatic changes additionally raise a user notification.
type Controller struct {
	samples    SampleSource
	thresholds ThresholdSource
	states     StateStore
	audit      AuditSink
	publisher  StatePublisher
	mirror     ActuationMirror
	logger     Logger
}

// NewController creates an actuation controller.
func NewController(samples SampleSource, thresholds ThresholdSource, states StateStore, audit AuditSink) *Controller {
	return &Controller{
		samples:    samples,
		thresholds: thresholds,
		states:     states,
		audit:      audit,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetStatePublisher enables mirroring of applied state to an external
// bus. Pass nil to disable.
func (c *Controller) SetStatePublisher(p StatePublisher) {
	c.publisher = p
}

// SetActuationMirror enables recording of applied state changes in a
// time-series store. Pass nil to disable.
func (c *Controller) SetActuationMirror(m ActuationMirror) {
	c.mirror = m
}

// Apply changes one actuator's state and records the change.
//
// The state write comes first and is authoritative. The audit append
// is attempted regardless of how slow the state write was; if it fails
// after the state write succeeded, Apply returns a PartialFailureError
// and the state change stands. Actuators are physical devices, so a
// commanded change is never automatically undone.
//
// Applying a state equal to the stored value is permitted; callers
// that can see current state should skip the redundant write.
//
// Parameters:
//   - userID: Account owning the actuator
//   - pin: Actuator pin number
//   - state: Target state, 0 or 1
//   - mode: Provenance of the change, manual or auto
func (c *Controller) Apply(ctx context.Context, userID string, pin, state int, mode actuator.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if err := c.states.SetState(ctx, userID, pin, state); err != nil {
		return fmt.Errorf("applying actuator %d for %s: %w", pin, userID, err)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishState(userID, pin, state); err != nil {
			c.logger.Warn("actuator state mirror failed",
				"user", userID, "pin", pin, "error", err)
		}
	}

	if c.mirror != nil {
		c.mirror.WriteActuation(userID, pin, state, string(mode))
	}

	entry := actuator.Log{ActuatorID: pin, NewState: state, Mode: mode}
	if _, err := c.audit.AppendLog(ctx, userID, entry); err != nil {
		c.logger.Error("actuator state changed but audit append failed",
			"user", userID, "pin", pin, "state", state, "error", err)
		return &PartialFailureError{ActuatorID: pin, NewState: state, Err: err}
	}

	c.logger.Info("actuator state applied",
		"user", userID, "pin", pin, "state", state, "mode", string(mode))
	return nil
}

// RunCycle performs one full control pass for a user: load the latest
// sample, the threshold set, and current actuator state, evaluate, and
// apply each resulting decision in auto mode with a notification.
//
// A user with no samples yet, or no configured thresholds, gets a
// clean no-op, not an error. Decision application errors are joined so
// one failing actuator does not stop the others.
func (c *Controller) RunCycle(ctx context.Context, userID, stationID string, mappings []Mapping) error {
	sample, err := c.samples.Latest(ctx, stationID)
	if errors.Is(err, telemetry.ErrNoSamples) {
		c.logger.Debug("control cycle skipped, no samples", "user", userID, "station", stationID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading latest sample for %s: %w", stationID, err)
	}

	bounds, err := c.thresholds.Thresholds(ctx, userID)
	if errors.Is(err, threshold.ErrNoThresholds) {
		c.logger.Debug("control cycle skipped, no thresholds", "user", userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading thresholds for %s: %w", userID, err)
	}

	current, err := c.states.State(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading actuator state for %s: %w", userID, err)
	}

	decisions := Evaluate(sample, bounds, current, mappings)
	if len(decisions) == 0 {
		return nil
	}

	var errs []error
	for _, d := range decisions {
		if err := c.Apply(ctx, userID, d.ActuatorID, d.NewState, actuator.ModeAuto); err != nil {
			errs = append(errs, err)
			var pf *PartialFailureError
			if !errors.As(err, &pf) {
				continue // state did not change, nothing to announce
			}
		}
		c.notifyActuation(ctx, userID, d)
	}
	return errors.Join(errs...)
}

// notifyActuation raises a best-effort notification for an automatic
// state change. A failed notification never fails the cycle.
func (c *Controller) notifyActuation(ctx context.Context, userID string, d Decision) {
	verb := "on"
	if d.NewState == 0 {
		verb = "off"
	}
	msg := fmt.Sprintf("Actuator %d switched %s automatically: %s out of range", d.ActuatorID, verb, d.Quantity)
	if _, err := c.audit.AppendNotification(ctx, userID, msg); err != nil {
		c.logger.Warn("notification append failed", "user", userID, "pin", d.ActuatorID, "error", err)
	}
}

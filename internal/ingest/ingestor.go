package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/canopylabs/canopy-core/internal/infrastructure/config"
	"github.com/canopylabs/canopy-core/internal/infrastructure/mqtt"
	"github.com/canopylabs/canopy-core/internal/telemetry"
)

// appendTimeout bounds the store write for one incoming sample.
const appendTimeout = 10 * time.Second

// subscribeQoS is the QoS level for the telemetry subscription.
// At-least-once: a duplicate sample gets a fresh ordered key and is
// harmless, a lost one leaves a gap in the series.
const subscribeQoS = 1

// Bus is the subscription surface the ingestor needs from the MQTT
// client.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// SampleWriter appends validated samples to a station's series.
type SampleWriter interface {
	Append(ctx context.Context, stationID string, sample telemetry.Sample) error
}

// Mirror receives a best-effort copy of every ingested sample.
type Mirror interface {
	WriteSample(stationID string, sample telemetry.Sample)
}

// CycleTrigger requests an immediate control cycle for a user.
type CycleTrigger interface {
	Trigger(userID string) error
}

// Logger defines the logging interface used by the Ingestor.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Ingestor consumes station telemetry from the MQTT bus, stores it,
// and nudges the control loop for every user bound to the reporting
// station. An optional mirror receives a copy of each sample.
type Ingestor struct {
	bus     Bus
	samples SampleWriter
	mirror  Mirror
	trigger CycleTrigger
	logger  Logger

	// stationUsers maps a station to the users whose cycles it feeds.
	stationUsers map[string][]string
}

// NewIngestor creates a telemetry ingestor. The user bindings tell it
// which users to trigger when a station reports.
func NewIngestor(bus Bus, samples SampleWriter, users []config.UserBinding) *Ingestor {
	stationUsers := make(map[string][]string)
	for _, u := range users {
		stationUsers[u.StationID] = append(stationUsers[u.StationID], u.UserID)
	}
	return &Ingestor{
		bus:          bus,
		samples:      samples,
		stationUsers: stationUsers,
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the ingestor.
func (i *Ingestor) SetLogger(logger Logger) {
	i.logger = logger
}

// SetMirror enables best-effort sample mirroring. Pass nil to disable.
func (i *Ingestor) SetMirror(m Mirror) {
	i.mirror = m
}

// SetTrigger enables on-sample control cycles. Pass nil to leave the
// control loop on its fixed cadence only.
func (i *Ingestor) SetTrigger(t CycleTrigger) {
	i.trigger = t
}

// Start subscribes to the telemetry wildcard topic.
func (i *Ingestor) Start() error {
	topic := mqtt.Topics{}.AllTelemetry()
	if err := i.bus.Subscribe(topic, subscribeQoS, i.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

// Stop drops the telemetry subscription. In-flight handlers finish on
// their own.
func (i *Ingestor) Stop() error {
	return i.bus.Unsubscribe(mqtt.Topics{}.AllTelemetry())
}

// handleMessage processes one telemetry publication.
func (i *Ingestor) handleMessage(topic string, payload []byte) error {
	stationID, err := stationFromTopic(topic)
	if err != nil {
		return err
	}

	var sample telemetry.Sample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return fmt.Errorf("decoding sample from %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := i.samples.Append(ctx, stationID, sample); err != nil {
		return fmt.Errorf("storing sample from %s: %w", stationID, err)
	}

	if i.mirror != nil {
		i.mirror.WriteSample(stationID, sample)
	}

	if i.trigger != nil {
		for _, userID := range i.stationUsers[stationID] {
			if err := i.trigger.Trigger(userID); err != nil {
				i.logger.Warn("cycle trigger failed", "user", userID, "error", err)
			}
		}
	}

	i.logger.Debug("sample ingested", "station", stationID, "timestamp", sample.Timestamp)
	return nil
}

// stationFromTopic extracts the station id from a telemetry topic of
// the form canopy/telemetry/{stationId}.
func stationFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] == "" {
		return "", fmt.Errorf("ingest: unexpected telemetry topic %q", topic)
	}
	return parts[2], nil
}

package query

import (
	"context"
	"testing"
	"time"

	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/control"
	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
	"github.com/canopylabs/canopy-core/internal/notify"
	"github.com/canopylabs/canopy-core/internal/telemetry"
	"github.com/canopylabs/canopy-core/internal/threshold"
)

// auditReader adapts a Sink to the facade's read interface.
type auditReader struct {
	sink *notify.Sink
}

func (r *auditReader) Logs(ctx context.Context, userID string, limit int) ([]actuator.Log, error) {
	return r.sink.Logs(ctx, userID, limit)
}

func (r *auditReader) Notifications(ctx context.Context, userID string, limit int) ([]notify.Notification, error) {
	return r.sink.Notifications(ctx, userID, limit)
}

func setupFacade() (*Facade, *telemetry.Adapter, *notify.Sink, store.Store) {
	st := store.NewMemoryStore()
	samples := telemetry.NewAdapter(st)
	sink := notify.NewSink(st)
	return NewFacade(samples, &auditReader{sink: sink}), samples, sink, st
}

func TestFacade_WindowedSamplesEmptySeries(t *testing.T) {
	f, _, _, _ := setupFacade()

	samples, err := f.WindowedSamples(context.Background(), "id-03", 15)
	if err != nil {
		t.Fatalf("WindowedSamples: %v", err)
	}
	if samples == nil || len(samples) != 0 {
		t.Errorf("samples = %v, want empty slice", samples)
	}
}

func TestFacade_WindowedSamplesShortSeries(t *testing.T) {
	f, adapter, _, _ := setupFacade()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sample := telemetry.Sample{
			Timestamp:   int64(1700000000 + i),
			Temperature: float64(20 + i),
			Humidity:    55, Pressure: 1013, DewPoint: 12, Voltage: 3.9,
		}
		if err := adapter.Append(ctx, "id-03", sample); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	samples, err := f.WindowedSamples(ctx, "id-03", 15)
	if err != nil {
		t.Fatalf("WindowedSamples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3 (short series is not an error)", len(samples))
	}
	if samples[2].Temperature != 22 {
		t.Errorf("newest last: got %v, want 22", samples[2].Temperature)
	}
}

func TestFacade_ManualApplyVisibleInLogs(t *testing.T) {
	f, samples, sink, st := setupFacade()
	ctx := context.Background()

	controller := control.NewController(
		samples,
		threshold.NewAdapter(st),
		actuator.NewAdapter(st),
		sink,
	)

	if err := controller.Apply(ctx, "user-01", 16, 1, actuator.ModeManual); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	logs, err := f.Logs(ctx, "user-01")
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) == 0 {
		t.Fatal("no logs after manual apply")
	}
	first := logs[0]
	if first.ActuatorID != 16 || first.NewState != 1 || first.Mode != actuator.ModeManual {
		t.Errorf("first log = %+v, want pin 16 state 1 mode manual", first)
	}
}

func TestFacade_NotificationsNewestFirst(t *testing.T) {
	f, _, sink, _ := setupFacade()
	ctx := context.Background()

	for _, msg := range []string{"one", "two"} {
		if _, err := sink.AppendNotification(ctx, "user-01", msg); err != nil {
			t.Fatalf("AppendNotification: %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct wall-clock timestamps
	}

	list, err := f.Notifications(ctx, "user-01")
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Message != "two" {
		t.Errorf("first = %q, want newest first", list[0].Message)
	}
}

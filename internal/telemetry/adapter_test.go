package telemetry

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

func sampleAt(ts int64, temp float64) Sample {
	return Sample{
		Timestamp:   ts,
		Temperature: temp,
		Humidity:    55,
		Pressure:    1013,
		DewPoint:    12,
		Voltage:     3.9,
	}
}

func TestAdapter_AppendAndLatest(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	for i, temp := range []float64{20, 21, 22} {
		if err := adapter.Append(ctx, "id-03", sampleAt(int64(1700000000+i), temp)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	latest, err := adapter.Latest(ctx, "id-03")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Temperature != 22 {
		t.Errorf("latest temperature = %v, want 22", latest.Temperature)
	}
}

func TestAdapter_LatestEmpty(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())

	_, err := adapter.Latest(context.Background(), "id-03")
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("Latest on empty series = %v, want ErrNoSamples", err)
	}
}

func TestAdapter_WindowOrderAndSize(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := adapter.Append(ctx, "id-03", sampleAt(int64(1700000000+i), float64(20+i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	window, err := adapter.Window(ctx, "id-03", 3)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("window size = %d, want 3", len(window))
	}
	// Ascending by timestamp, newest last.
	for i := 1; i < len(window); i++ {
		if window[i].Timestamp < window[i-1].Timestamp {
			t.Errorf("window out of order at %d: %d < %d", i, window[i].Timestamp, window[i-1].Timestamp)
		}
	}
	if window[2].Temperature != 24 {
		t.Errorf("newest temperature = %v, want 24", window[2].Temperature)
	}
}

func TestAdapter_WindowEmptySeries(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())

	window, err := adapter.Window(context.Background(), "id-03", 15)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(window) != 0 {
		t.Errorf("window = %v, want empty", window)
	}
}

func TestAdapter_SeriesAreIsolated(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	if err := adapter.Append(ctx, "id-01", sampleAt(1700000000, 20)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := adapter.Latest(ctx, "id-02"); !errors.Is(err, ErrNoSamples) {
		t.Errorf("foreign station saw samples: %v", err)
	}
}

func TestAdapter_RejectsInvalidStation(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	for _, station := range []string{"", "a/b", "bad.id"} {
		if err := adapter.Append(ctx, station, sampleAt(1700000000, 20)); !errors.Is(err, ErrInvalidStation) {
			t.Errorf("Append(%q) = %v, want ErrInvalidStation", station, err)
		}
	}
}

func TestSample_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sample  Sample
		wantErr bool
	}{
		{"valid", sampleAt(1700000000, 20), false},
		{"zero timestamp", sampleAt(0, 20), true},
		{"negative timestamp", sampleAt(-5, 20), true},
		{"nan", sampleAt(1700000000, math.NaN()), true},
		{"inf", sampleAt(1700000000, math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sample.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSample) {
				t.Errorf("error %v is not ErrInvalidSample", err)
			}
		})
	}
}

package threshold

import (
	"context"
	"errors"
	"testing"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

func floatPtr(v float64) *float64 { return &v }

func TestAdapter_ThresholdsMissing(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())

	_, err := adapter.Thresholds(context.Background(), "user-01")
	if !errors.Is(err, ErrNoThresholds) {
		t.Errorf("Thresholds = %v, want ErrNoThresholds", err)
	}
}

func TestAdapter_FirstUpdateResolvesAgainstDefaults(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	err := adapter.Update(ctx, "user-01", Update{TemperatureMax: floatPtr(30)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	set, err := adapter.Thresholds(ctx, "user-01")
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}

	if set.TemperatureMax != 30 {
		t.Errorf("TemperatureMax = %v, want 30", set.TemperatureMax)
	}
	defaults := DefaultSet()
	if set.TemperatureMin != defaults.TemperatureMin {
		t.Errorf("TemperatureMin = %v, want default %v", set.TemperatureMin, defaults.TemperatureMin)
	}
	if set.HumidityMax != defaults.HumidityMax {
		t.Errorf("HumidityMax = %v, want default %v", set.HumidityMax, defaults.HumidityMax)
	}
}

func TestAdapter_PartialUpdateLeavesOtherFieldsUnchanged(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	if err := adapter.Update(ctx, "user-01", Update{
		TemperatureMin: floatPtr(12),
		TemperatureMax: floatPtr(33),
		HumidityMin:    floatPtr(45),
	}); err != nil {
		t.Fatalf("seed update: %v", err)
	}
	before, err := adapter.Thresholds(ctx, "user-01")
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}

	if err := adapter.Update(ctx, "user-01", Update{TemperatureMax: floatPtr(28)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after, err := adapter.Thresholds(ctx, "user-01")
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}

	if after.TemperatureMax != 28 {
		t.Errorf("TemperatureMax = %v, want 28", after.TemperatureMax)
	}
	want := *before
	want.TemperatureMax = 28
	if *after != want {
		t.Errorf("other fields changed: got %+v, want %+v", *after, want)
	}
}

func TestAdapter_EmptyUpdateRejected(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())

	err := adapter.Update(context.Background(), "user-01", Update{})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("empty update = %v, want ErrInvalidUpdate", err)
	}
}

func TestAdapter_InvalidUser(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	for _, user := range []string{"", "a/b", "bad.user"} {
		if _, err := adapter.Thresholds(ctx, user); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("Thresholds(%q) = %v, want ErrInvalidUser", user, err)
		}
		if err := adapter.Update(ctx, user, Update{TemperatureMax: floatPtr(1)}); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("Update(%q) = %v, want ErrInvalidUser", user, err)
		}
	}
}

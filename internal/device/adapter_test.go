package device

import (
	"context"
	"errors"
	"testing"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

func strPtr(s string) *string { return &s }

func TestSanitizeSerial(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"clean", "ESP32-0042", "ESP32-0042", false},
		{"forbidden chars", "a.b#c$d[e]f/g", "a_b_c_d_e_f_g", false},
		{"whitespace trimmed", "  sn-1  ", "sn-1", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeSerial(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeSerial(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeSerial(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAdapter_RegisterDefaultsAndDuplicate(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	dev, err := adapter.Register(ctx, "user-01", Device{Serial: "ESP32-0042", Name: "Bed A"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if dev.Status != StatusActive {
		t.Errorf("status = %q, want active default", dev.Status)
	}
	if dev.CreatedAt == 0 {
		t.Error("CreatedAt not assigned")
	}

	_, err = adapter.Register(ctx, "user-01", Device{Serial: "ESP32-0042", Name: "Imposter"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate register = %v, want ErrDuplicate", err)
	}
}

func TestAdapter_RegisterSanitizesSerial(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	dev, err := adapter.Register(ctx, "user-01", Device{Serial: "esp.32/a", Name: "x"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if dev.Serial != "esp_32_a" {
		t.Errorf("serial = %q, want esp_32_a", dev.Serial)
	}

	// The raw and sanitized spellings collide on purpose.
	if _, err := adapter.Register(ctx, "user-01", Device{Serial: "esp_32_a"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("sanitized collision = %v, want ErrDuplicate", err)
	}
}

func TestAdapter_UpdatePartial(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	if _, err := adapter.Register(ctx, "user-01", Device{Serial: "sn-1", Name: "Bed A", Location: "north"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	status := StatusInactive
	if err := adapter.Update(ctx, "user-01", "sn-1", Update{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	devices, err := adapter.List(ctx, "user-01")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("len(devices) = %d, want 1", len(devices))
	}
	if devices[0].Status != StatusInactive {
		t.Errorf("status = %q, want inactive", devices[0].Status)
	}
	if devices[0].Name != "Bed A" || devices[0].Location != "north" {
		t.Errorf("untouched fields changed: %+v", devices[0])
	}
}

func TestAdapter_UpdateValidation(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	if err := adapter.Update(ctx, "user-01", "sn-1", Update{}); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("empty update = %v, want ErrInvalidUpdate", err)
	}

	bad := Status("retired")
	if err := adapter.Update(ctx, "user-01", "sn-1", Update{Status: &bad}); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("bad status = %v, want ErrInvalidUpdate", err)
	}

	if err := adapter.Update(ctx, "user-01", "sn-1", Update{Name: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown device = %v, want ErrNotFound", err)
	}
}

func TestAdapter_RemoveAndList(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	ctx := context.Background()

	for _, serial := range []string{"sn-2", "sn-1", "sn-3"} {
		if _, err := adapter.Register(ctx, "user-01", Device{Serial: serial}); err != nil {
			t.Fatalf("Register %s: %v", serial, err)
		}
	}

	if err := adapter.Remove(ctx, "user-01", "sn-2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Removing an unknown serial is a no-op.
	if err := adapter.Remove(ctx, "user-01", "sn-9"); err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}

	devices, err := adapter.List(ctx, "user-01")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Serial != "sn-1" || devices[1].Serial != "sn-3" {
		t.Errorf("list order = [%s %s], want [sn-1 sn-3]", devices[0].Serial, devices[1].Serial)
	}
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/canopylabs/canopy-core/internal/infrastructure/database"
)

// storeUnderTest is implemented by both backends so the shared
// behaviour suite runs against each.
type storeUnderTest interface {
	Store
}

// openSQLite creates a migrated store over a throwaway database file.
func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "store.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE nodes (
		path TEXT PRIMARY KEY,
		parent TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return NewSQLiteStore(db.DB, 5*time.Second)
}

// backends returns each store implementation under a name for subtests.
func backends(t *testing.T) map[string]storeUnderTest {
	t.Helper()
	return map[string]storeUnderTest{
		"sqlite": openSQLite(t),
		"memory": NewMemoryStore(),
	}
}

func TestStore_SetGetRoundtrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := st.Set(ctx, "user-01/thresholds", map[string]any{"temperatureMax": 35.0}); err != nil {
				t.Fatalf("Set: %v", err)
			}

			raw, err := st.Get(ctx, "user-01/thresholds")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}

			var got map[string]float64
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got["temperatureMax"] != 35.0 {
				t.Errorf("temperatureMax = %v, want 35", got["temperatureMax"])
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(context.Background(), "user-01/thresholds")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_SetReplacesSubtree(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := st.Set(ctx, "user-01/aktuator/data/16", 1); err != nil {
				t.Fatalf("Set leaf: %v", err)
			}
			// Writing the parent replaces the whole subtree.
			if err := st.Set(ctx, "user-01/aktuator", map[string]any{"reset": true}); err != nil {
				t.Fatalf("Set parent: %v", err)
			}

			if _, err := st.Get(ctx, "user-01/aktuator/data/16"); !errors.Is(err, ErrNotFound) {
				t.Errorf("stale leaf survived parent replacement: %v", err)
			}
		})
	}
}

func TestStore_SetDoesNotTouchSiblingPrefix(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := st.Set(ctx, "user-01/thresholdsArchive", 1); err != nil {
				t.Fatalf("Set sibling: %v", err)
			}
			if err := st.Set(ctx, "user-01/thresholds", 2); err != nil {
				t.Fatalf("Set: %v", err)
			}

			if _, err := st.Get(ctx, "user-01/thresholdsArchive"); err != nil {
				t.Errorf("sibling with shared prefix was clobbered: %v", err)
			}
		})
	}
}

func TestStore_MergePreservesAbsentFields(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := st.Set(ctx, "user-01/thresholds", map[string]any{
				"temperatureMin": 10.0,
				"temperatureMax": 35.0,
			}); err != nil {
				t.Fatalf("Set: %v", err)
			}

			if err := st.Merge(ctx, "user-01/thresholds", map[string]any{
				"temperatureMax": 30.0,
			}); err != nil {
				t.Fatalf("Merge: %v", err)
			}

			raw, err := st.Get(ctx, "user-01/thresholds")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			var got map[string]float64
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got["temperatureMax"] != 30.0 {
				t.Errorf("temperatureMax = %v, want 30", got["temperatureMax"])
			}
			if got["temperatureMin"] != 10.0 {
				t.Errorf("temperatureMin = %v, want 10 (absent field must be preserved)", got["temperatureMin"])
			}
		})
	}
}

func TestStore_MergeOnNonObject(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := st.Set(ctx, "user-01/aktuator/data/16", 1); err != nil {
				t.Fatalf("Set: %v", err)
			}
			err := st.Merge(ctx, "user-01/aktuator/data/16", map[string]any{"x": 1})
			if !errors.Is(err, ErrNotObject) {
				t.Errorf("Merge on scalar = %v, want ErrNotObject", err)
			}
		})
	}
}

func TestStore_DeleteSubtree(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, p := range []string{"user-01/notifications/a", "user-01/notifications/b"} {
				if err := st.Set(ctx, p, map[string]any{"read": false}); err != nil {
					t.Fatalf("Set %s: %v", p, err)
				}
			}
			if err := st.Delete(ctx, "user-01/notifications"); err != nil {
				t.Fatalf("Delete: %v", err)
			}

			entries, err := st.Children(ctx, "user-01/notifications", 0)
			if err != nil {
				t.Fatalf("Children: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("entries after purge = %d, want 0", len(entries))
			}
		})
	}
}

func TestStore_ChildrenOrderAndWindow(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			keys := []string{"00000000003-aa", "00000000001-aa", "00000000002-aa"}
			for _, k := range keys {
				if err := st.Set(ctx, "auto_weather_stat/id-03/data/"+k, map[string]any{"k": k}); err != nil {
					t.Fatalf("Set: %v", err)
				}
			}
			// A grandchild must not appear as a direct child.
			if err := st.Set(ctx, "auto_weather_stat/id-03/data/00000000004-aa/extra", 1); err != nil {
				t.Fatalf("Set grandchild: %v", err)
			}

			entries, err := st.Children(ctx, "auto_weather_stat/id-03/data", 2)
			if err != nil {
				t.Fatalf("Children: %v", err)
			}

			gotKeys := make([]string, len(entries))
			for i, e := range entries {
				gotKeys[i] = e.Key
			}
			want := []string{"00000000002-aa", "00000000003-aa"}
			if !reflect.DeepEqual(gotKeys, want) {
				t.Errorf("window keys = %v, want %v", gotKeys, want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "user-01/thresholds", false},
		{"deep", "auto_weather_stat/id-03/data/x", false},
		{"empty", "", true},
		{"empty segment", "user-01//thresholds", true},
		{"trailing slash", "user-01/", true},
		{"dot", "user.01/thresholds", true},
		{"hash", "user#01", true},
		{"dollar", "a/$x", true},
		{"brackets", "a/[x]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPath) {
				t.Errorf("error %v is not ErrInvalidPath", err)
			}
		})
	}
}

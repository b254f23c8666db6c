package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

// seriesRoot is the store subtree holding all station sample series.
const seriesRoot = "auto_weather_stat"

// idSuffixLen is the length of the random suffix appended to sample keys.
const idSuffixLen = 8

// Adapter reads and writes station sample series in the hierarchical store.
//
// Samples live under auto_weather_stat/{stationId}/data/{orderedKey}. The
// ordered key is derived from the sample timestamp with a random suffix,
// so keys sort in time order and never collide within a series.
type Adapter struct {
	store store.Store
}

// NewAdapter creates a telemetry store adapter.
func NewAdapter(st store.Store) *Adapter {
	return &Adapter{store: st}
}

// Append stores a new sample at the end of a station's series.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - stationID: Station whose series receives the sample
//   - sample: Validated at the boundary before any write
//
// Returns:
//   - error: ErrInvalidStation, ErrInvalidSample, or a store error
func (a *Adapter) Append(ctx context.Context, stationID string, sample Sample) error {
	if err := validateStation(stationID); err != nil {
		return err
	}
	if err := sample.Validate(); err != nil {
		return err
	}

	path := store.Join(seriesRoot, stationID, "data", orderedKey(sample.Timestamp))
	if err := a.store.Set(ctx, path, sample); err != nil {
		return fmt.Errorf("appending sample for %s: %w", stationID, err)
	}
	return nil
}

// Latest returns the most recent sample in a station's series.
//
// Returns:
//   - Sample: The newest sample by ordering key
//   - error: ErrNoSamples when the series is empty
func (a *Adapter) Latest(ctx context.Context, stationID string) (Sample, error) {
	samples, err := a.Window(ctx, stationID, 1)
	if err != nil {
		return Sample{}, err
	}
	if len(samples) == 0 {
		return Sample{}, fmt.Errorf("%w: station %s", ErrNoSamples, stationID)
	}
	return samples[0], nil
}

// Window returns at most n of the most recent samples, ascending by key
// (newest last). An empty series yields an empty slice, not an error.
//
// Malformed records are dropped rather than trusted; the remaining window
// is still returned.
func (a *Adapter) Window(ctx context.Context, stationID string, n int) ([]Sample, error) {
	if err := validateStation(stationID); err != nil {
		return nil, err
	}

	path := store.Join(seriesRoot, stationID, "data")
	entries, err := a.store.Children(ctx, path, n)
	if err != nil {
		return nil, fmt.Errorf("reading sample window for %s: %w", stationID, err)
	}

	samples := make([]Sample, 0, len(entries))
	for _, e := range entries {
		var s Sample
		if err := json.Unmarshal(e.Value, &s); err != nil {
			continue // malformed record, not trusted
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// validateStation checks a station id is usable as a single store key.
func validateStation(stationID string) error {
	if stationID == "" || strings.ContainsRune(stationID, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidStation, stationID)
	}
	if err := store.ValidatePath(stationID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStation, stationID)
	}
	return nil
}

// orderedKey builds an ascending, collision-free series key from a sample
// timestamp. The zero-padded seconds sort lexicographically in time order;
// the random suffix breaks ties between samples in the same second.
func orderedKey(epochSeconds int64) string {
	return fmt.Sprintf("%011d-%s", epochSeconds, uuid.NewString()[:idSuffixLen])
}

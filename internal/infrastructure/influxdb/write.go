package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/canopylabs/canopy-core/internal/telemetry"
)

// WriteSample mirrors one station sample into the time-series bucket.
//
// The point carries the sample's own timestamp, not the write time, so
// delayed or replayed telemetry lands at the right spot in the series.
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteSample(stationID string, sample telemetry.Sample) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"station_samples",
		map[string]string{
			"station_id": stationID,
		},
		map[string]interface{}{
			"temperature": sample.Temperature,
			"humidity":    sample.Humidity,
			"pressure":    sample.Pressure,
			"dew_point":   sample.DewPoint,
			"voltage":     sample.Voltage,
		},
		time.Unix(sample.Timestamp, 0).UTC(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteActuation records one actuator state change for long-term
// duty-cycle analysis.
func (c *Client) WriteActuation(userID string, pin, state int, mode string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"actuations",
		map[string]string{
			"user_id": userID,
			"mode":    mode,
		},
		map[string]interface{}{
			"pin":   pin,
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

package domain

import (
	"context"
	"time"
)

// Measurement types accepted from the collector.
const (
	MeasurementRainfall   = "rainfall"
	MeasurementRiverLevel = "river_level"
	MeasurementWaterTemp  = "water_temp"
)

// RawLoggerRecord represents the flat JSON structure produced by the
// collector from a field logger CSV export. All columns arrive as strings.
type RawLoggerRecord struct {
	Time        string `json:"Time"`        // HHMM, e.g. "1510"
	Site        string `json:"Site"`        // site identifier, e.g. "FP35"
	SiteName    string `json:"SiteName"`    // human-readable name, e.g. "Lower Wraymead"
	Lat         string `json:"Lat"`
	Lon         string `json:"Lon"`
	Value       string `json:"Value"`
	Units       string `json:"Units"`
	Measurement string `json:"Measurement"` // "rainfall", "river_level", or "water_temp"
	Comments    string `json:"Comments"`
}

// RawReading represents an unprocessed message from the source topic.
type RawReading struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair. Positioned
// distinguishes a record with no coordinates from a site at (0, 0).
type Geo struct {
	Lat        float64 `json:"lat,omitempty"`
	Lon        float64 `json:"lon,omitempty"`
	Positioned bool    `json:"positioned,omitempty"`
}

// Reading is the domain-rich representation after parsing.
type Reading struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	SiteName    string    `json:"site_name,omitempty"`
	Geo         Geo       `json:"geo,omitempty"`
	Measurement string    `json:"measurement"`
	Value       float64   `json:"value"`
	Units       string    `json:"units"`
	Time        time.Time `json:"time"`
	Comments    string    `json:"comments,omitempty"`
	Intensity   string    `json:"intensity,omitempty"`   // rainfall only
	DateBucket  string    `json:"date_bucket,omitempty"` // calendar date, e.g. "2024-04-26"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputReading is the serialized form destined for the sink topic.
type OutputReading struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRawReading deserializes a RawReading's value into a Reading.
// It expects the flat CSV-style JSON produced by the collector service.
func ParseRawReading(raw RawReading) (Reading, error) {
	var rec RawLoggerRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Reading{}, fmt.Errorf("parse raw reading: %w", err)
	}

	lat, latOK := parseFloat(rec.Lat)
	lon, lonOK := parseFloat(rec.Lon)
	value := parseFloatOrZero(rec.Value)
	readingTime := parseHHMM(raw.Timestamp, rec.Time)

	return Reading{
		ID:          generateID(rec.Site, rec.Measurement, rec.Time, value),
		SiteID:      rec.Site,
		SiteName:    rec.SiteName,
		Geo:         Geo{Lat: lat, Lon: lon, Positioned: latOK && lonOK},
		Measurement: rec.Measurement,
		Value:       value,
		Units:       rec.Units,
		Time:        readingTime,
		Comments:    rec.Comments,

		RawPayload: raw.Value,
	}, nil
}

// parseFloat parses a string as float64, reporting whether a value was
// actually present.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	v, _ := parseFloat(s)
	return v
}

// parseHHMM combines a base date with an HHMM time string (e.g. "1510" → 15:10).
func parseHHMM(baseDate time.Time, hhmm string) time.Time {
	hhmm = strings.TrimSpace(hhmm)
	if len(hhmm) < 3 {
		return baseDate
	}
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return baseDate
	}

	return time.Date(
		baseDate.Year(), baseDate.Month(), baseDate.Day(),
		hour, mins, 0, 0, time.UTC,
	)
}

// generateID produces a deterministic ID from the reading's key fields.
// Deterministic IDs enable idempotent upserts downstream and replay safety —
// reprocessing the same raw reading produces the same ID.
func generateID(site, measurement, timeStr string, value float64) string {
	input := fmt.Sprintf("%s|%s|%s|%g", site, measurement, timeStr, value)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if measurement == "" {
		return short
	}
	return measurement + "-" + short
}

// EnrichReading normalizes and enriches a parsed reading. It validates the
// measurement type, infers default units, derives the rainfall intensity
// class, assigns a calendar-date bucket, and stamps the processing time.
func EnrichReading(reading Reading) Reading {
	reading.Measurement = normalizeMeasurement(reading.Measurement)
	reading.Units = normalizeUnits(reading.Measurement, reading.Units)
	reading.Intensity = deriveIntensity(reading.Measurement, reading.Value)
	reading.DateBucket = deriveDateBucket(reading.Time)
	reading.ProcessedAt = clock.Now()
	return reading
}

// normalizeMeasurement validates the measurement type metadata added by the
// collector when converting CSV to JSON. Exact matches only.
func normalizeMeasurement(value string) string {
	switch value {
	case MeasurementRainfall, MeasurementRiverLevel, MeasurementWaterTemp:
		return value
	default:
		return ""
	}
}

// normalizeUnits returns the units as-is if present, otherwise infers the
// default for the measurement type: mm for rainfall, m for river level,
// degC for water temperature.
func normalizeUnits(measurement, units string) string {
	units = strings.TrimSpace(units)
	if units != "" {
		return units
	}

	switch measurement {
	case MeasurementRainfall:
		return "mm"
	case MeasurementRiverLevel:
		return "m"
	case MeasurementWaterTemp:
		return "degC"
	default:
		return ""
	}
}

// deriveIntensity maps a rainfall depth to a WMO intensity class:
// <2.5mm slight, <10mm moderate, <50mm heavy, otherwise violent.
// Non-rainfall measurements and zero depths carry no class.
func deriveIntensity(measurement string, value float64) string {
	if measurement != MeasurementRainfall || value <= 0 {
		return ""
	}
	switch {
	case value < 2.5:
		return "slight"
	case value < 10:
		return "moderate"
	case value < 50:
		return "heavy"
	default:
		return "violent"
	}
}

// deriveDateBucket truncates the reading time to its UTC calendar date.
// Returns "" if the input is zero.
func deriveDateBucket(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// SerializeReading marshals a Reading into an OutputReading for the sink topic.
func SerializeReading(reading Reading) (OutputReading, error) {
	data, err := json.Marshal(reading)
	if err != nil {
		return OutputReading{}, fmt.Errorf("serialize reading: %w", err)
	}
	return OutputReading{
		Key:   []byte(reading.ID),
		Value: data,
		Headers: map[string]string{
			"measurement":  reading.Measurement,
			"processed_at": reading.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

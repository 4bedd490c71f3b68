package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReadingID = "rdg-123"
	testUnknown   = "unknown type"
)

func TestParseRawReading(t *testing.T) {
	baseDate := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)

	t.Run("rainfall record", func(t *testing.T) {
		data := []byte(`{"Time":"1510","Site":"FP35","SiteName":"Lower Wraymead","Lat":"51.45","Lon":"-1.12","Value":"3.2","Measurement":"rainfall","Comments":"tipping bucket"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.Equal(t, "FP35", result.SiteID)
		assert.Equal(t, "Lower Wraymead", result.SiteName)
		assert.Equal(t, 51.45, result.Geo.Lat)
		assert.Equal(t, -1.12, result.Geo.Lon)
		assert.True(t, result.Geo.Positioned)
		assert.Equal(t, "rainfall", result.Measurement)
		assert.Equal(t, 3.2, result.Value)
		assert.Equal(t, "tipping bucket", result.Comments)
		assert.Equal(t, time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC), result.Time)
		assert.NotEmpty(t, result.ID)
		assert.True(t, strings.HasPrefix(result.ID, "rainfall-"))
		assert.Equal(t, data, result.RawPayload)
	})

	t.Run("river level record", func(t *testing.T) {
		data := []byte(`{"Time":"1223","Site":"PL12","Value":"0.84","Units":"m","Measurement":"river_level","Lat":"51.47","Lon":"-1.10"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.Equal(t, "river_level", result.Measurement)
		assert.Equal(t, 0.84, result.Value)
		assert.Equal(t, "m", result.Units)
		assert.True(t, strings.HasPrefix(result.ID, "river_level-"))
	})

	t.Run("null island coordinates are a position", func(t *testing.T) {
		data := []byte(`{"Time":"1200","Site":"NI01","Lat":"0","Lon":"0","Value":"1.0","Measurement":"rainfall"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.True(t, result.Geo.Positioned)
		assert.Equal(t, 0.0, result.Geo.Lat)
		assert.Equal(t, 0.0, result.Geo.Lon)
	})

	t.Run("missing coordinates are not a position", func(t *testing.T) {
		data := []byte(`{"Time":"1200","Site":"PL12","Value":"1.0","Measurement":"rainfall"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.False(t, result.Geo.Positioned)
	})

	t.Run("unparseable value becomes zero", func(t *testing.T) {
		data := []byte(`{"Time":"1245","Site":"PL12","Value":"n/a","Measurement":"water_temp"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Value)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		raw := RawReading{Value: []byte("{invalid json")}
		_, err := ParseRawReading(raw)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw reading")
	})

	t.Run("empty JSON", func(t *testing.T) {
		raw := RawReading{Value: []byte("{}"), Timestamp: baseDate}
		result, err := ParseRawReading(raw)

		require.NoError(t, err)
		assert.Equal(t, "", result.Measurement)
		assert.True(t, result.ProcessedAt.IsZero())
	})

	t.Run("deterministic ID", func(t *testing.T) {
		data := []byte(`{"Time":"1510","Site":"FP35","Value":"3.2","Measurement":"rainfall"}`)
		raw := RawReading{Value: data, Timestamp: baseDate}

		result1, err := ParseRawReading(raw)
		require.NoError(t, err)
		result2, err := ParseRawReading(raw)
		require.NoError(t, err)

		assert.Equal(t, result1.ID, result2.ID)
	})
}

func TestParseHHMM(t *testing.T) {
	baseDate := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hhmm     string
		expected time.Time
	}{
		{"four digits", "1510", time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)},
		{"three digits", "930", time.Date(2024, 4, 26, 9, 30, 0, 0, time.UTC)},
		{"midnight", "0000", time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)},
		{"empty string", "", baseDate},
		{"too short", "12", baseDate},
		{"invalid hour", "2510", baseDate},
		{"invalid minute", "1299", baseDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseHHMM(baseDate, tt.hhmm)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGenerateID(t *testing.T) {
	t.Run("includes measurement prefix", func(t *testing.T) {
		id := generateID("FP35", "rainfall", "1510", 3.2)
		assert.True(t, strings.HasPrefix(id, "rainfall-"))
	})

	t.Run("deterministic", func(t *testing.T) {
		id1 := generateID("PL12", "river_level", "1251", 0.84)
		id2 := generateID("PL12", "river_level", "1251", 0.84)
		assert.Equal(t, id1, id2)
	})

	t.Run("different inputs produce different IDs", func(t *testing.T) {
		id1 := generateID("FP35", "rainfall", "1510", 3.2)
		id2 := generateID("FP35", "rainfall", "1511", 3.2)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty measurement", func(t *testing.T) {
		id := generateID("FP35", "", "1510", 3.2)
		assert.NotEmpty(t, id)
		assert.False(t, strings.Contains(id, "-"))
	})
}

func TestEnrichReading(t *testing.T) {
	fixedTime := time.Date(2024, 4, 26, 12, 30, 45, 0, time.UTC)
	mockClock := clockwork.NewFakeClockAt(fixedTime)
	SetClock(mockClock)
	defer SetClock(nil)

	t.Run("rainfall reading", func(t *testing.T) {
		reading := Reading{
			ID:          "rdg-1",
			SiteID:      "FP35",
			Measurement: "rainfall",
			Value:       12.5,
			Time:        time.Date(2024, 4, 26, 15, 45, 0, 0, time.UTC),
		}

		result := EnrichReading(reading)

		assert.Equal(t, "rainfall", result.Measurement)
		assert.Equal(t, "mm", result.Units)
		assert.Equal(t, "heavy", result.Intensity)
		assert.Equal(t, "2024-04-26", result.DateBucket)
		assert.Equal(t, fixedTime, result.ProcessedAt)
	})

	t.Run("river level reading", func(t *testing.T) {
		reading := Reading{
			Measurement: "river_level",
			Value:       0.84,
		}

		result := EnrichReading(reading)

		assert.Equal(t, "m", result.Units)
		assert.Empty(t, result.Intensity)
	})

	t.Run("unknown measurement cleared", func(t *testing.T) {
		reading := Reading{Measurement: "snow_depth", Value: 5}

		result := EnrichReading(reading)

		assert.Empty(t, result.Measurement)
		assert.Empty(t, result.Units)
	})
}

func TestNormalizeMeasurement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"rainfall", "rainfall", "rainfall"},
		{"river level", "river_level", "river_level"},
		{"water temp", "water_temp", "water_temp"},
		{"uppercase rejected", "RAINFALL", ""},
		{"with spaces rejected", "  rainfall  ", ""},
		{testUnknown, "snow_depth", ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeMeasurement(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeUnits(t *testing.T) {
	tests := []struct {
		name        string
		measurement string
		units       string
		expected    string
	}{
		{"explicit units", "rainfall", "in", "in"},
		{"explicit units with spaces", "rainfall", "  mm  ", "mm"},
		{"rainfall default", "rainfall", "", "mm"},
		{"river level default", "river_level", "", "m"},
		{"water temp default", "water_temp", "", "degC"},
		{testUnknown, "snow_depth", "", ""},
		{"empty type and units", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeUnits(tt.measurement, tt.units)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDeriveIntensity(t *testing.T) {
	tests := []struct {
		name        string
		measurement string
		value       float64
		expected    string
	}{
		{"slight", "rainfall", 1.0, "slight"},
		{"moderate", "rainfall", 5.0, "moderate"},
		{"heavy", "rainfall", 25.0, "heavy"},
		{"violent", "rainfall", 60.0, "violent"},
		{"edge case 2.5", "rainfall", 2.5, "moderate"},
		{"edge case 10", "rainfall", 10, "heavy"},
		{"edge case 50", "rainfall", 50, "violent"},
		{"zero rainfall", "rainfall", 0, ""},
		{"river level no class", "river_level", 5.0, ""},
		{"water temp no class", "water_temp", 18.5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := deriveIntensity(tt.measurement, tt.value)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDeriveDateBucket(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"midnight", time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC), "2024-04-26"},
		{"afternoon truncated", time.Date(2024, 4, 26, 15, 45, 30, 0, time.UTC), "2024-04-26"},
		{"different timezone", time.Date(2024, 4, 26, 22, 30, 0, 0, time.FixedZone("EST", -5*3600)), "2024-04-27"},
		{"zero time", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := deriveDateBucket(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSerializeReading(t *testing.T) {
	fixedTime := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)

	t.Run("successful serialization", func(t *testing.T) {
		reading := Reading{
			ID:          testReadingID,
			SiteID:      "FP35",
			Measurement: "rainfall",
			Value:       3.2,
			Units:       "mm",
			ProcessedAt: fixedTime,
		}

		result, err := SerializeReading(reading)

		require.NoError(t, err)
		assert.Equal(t, []byte(testReadingID), result.Key)

		var unmarshaled Reading
		err = json.Unmarshal(result.Value, &unmarshaled)
		require.NoError(t, err)
		assert.Equal(t, testReadingID, unmarshaled.ID)
		assert.Equal(t, "rainfall", unmarshaled.Measurement)
		assert.Equal(t, 3.2, unmarshaled.Value)

		assert.Equal(t, "rainfall", result.Headers["measurement"])
		assert.Equal(t, "2024-04-26T12:00:00Z", result.Headers["processed_at"])
	})

	t.Run("empty reading ID", func(t *testing.T) {
		reading := Reading{
			Measurement: "water_temp",
			ProcessedAt: fixedTime,
		}

		result, err := SerializeReading(reading)

		require.NoError(t, err)
		assert.Empty(t, result.Key)
		assert.Equal(t, "water_temp", result.Headers["measurement"])
	})
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mockClock := clockwork.NewFakeClockAt(fixedTime)

		SetClock(mockClock)
		assert.Equal(t, fixedTime, clock.Now())

		SetClock(nil) // reset
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		now := clock.Now()
		assert.True(t, time.Since(now) < time.Second)
	})
}

// Command genreadings reads field logger CSV exports and generates mock
// reading fixtures for the test suites. It pushes every row through the
// actual domain transform so the enriched output matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genreadings \
//	  -csv-dir ../catchment-collector/data/mock \
//	  -raw-out data/mock/readings_240426_raw.json \
//	  -enriched-out data/mock/readings_240426_enriched.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riverwatch/catchment-service/internal/domain"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

// csvDef maps a logger export file to the measurement type the collector
// injects when converting the rows to JSON.
type csvDef struct {
	file        string
	measurement string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvDir := flag.String("csv-dir", "", "directory containing field logger CSV exports")
	rawOut := flag.String("raw-out", "", "output path for the raw JSON fixture")
	enrichedOut := flag.String("enriched-out", "", "output path for the enriched JSON fixture")
	flag.Parse()

	if *csvDir == "" || *rawOut == "" || *enrichedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-dir, -raw-out, -enriched-out")
	}

	defs := []csvDef{
		{file: "240426_rain_gauge.csv", measurement: domain.MeasurementRainfall},
		{file: "240426_stage.csv", measurement: domain.MeasurementRiverLevel},
		{file: "240426_water_temp.csv", measurement: domain.MeasurementWaterTemp},
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	var rawRecords []domain.RawLoggerRecord //nolint:prealloc // size depends on CSV file contents
	var enriched []domain.Reading           //nolint:prealloc // size depends on CSV file contents

	for _, d := range defs {
		path := filepath.Join(*csvDir, d.file)
		recs, readings, err := processCSV(path, d.measurement)
		if err != nil {
			return fmt.Errorf("processing %s: %w", d.file, err)
		}
		rawRecords = append(rawRecords, recs...)
		enriched = append(enriched, readings...)
		log.Printf("%s: %d records", d.measurement, len(recs))
	}

	log.Printf("total: %d records", len(rawRecords))

	if err := writeJSON(*rawOut, rawRecords); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*enrichedOut, enriched); err != nil {
		return fmt.Errorf("writing enriched fixture: %w", err)
	}
	log.Printf("wrote enriched fixture: %s", *enrichedOut)

	printStats(enriched)
	return nil
}

func processCSV(path, measurement string) ([]domain.RawLoggerRecord, []domain.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[h] = i
	}

	var recs []domain.RawLoggerRecord
	var readings []domain.Reading

	for _, row := range rows[1:] {
		if len(row) < len(header) {
			continue
		}

		rec := domain.RawLoggerRecord{
			Time:        get(row, colIdx, "Time"),
			Site:        get(row, colIdx, "Site"),
			SiteName:    get(row, colIdx, "SiteName"),
			Lat:         get(row, colIdx, "Lat"),
			Lon:         get(row, colIdx, "Lon"),
			Value:       get(row, colIdx, "Value"),
			Units:       get(row, colIdx, "Units"),
			Comments:    get(row, colIdx, "Comments"),
			Measurement: measurement,
		}
		recs = append(recs, rec)

		// Run the actual pipeline transformation.
		rawJSON, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}

		parsed, err := domain.ParseRawReading(domain.RawReading{
			Value:     rawJSON,
			Timestamp: baseDate,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw reading: %w", err)
		}

		readings = append(readings, domain.EnrichReading(parsed))
	}

	return recs, readings, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(readings []domain.Reading) {
	measurementCounts := map[string]int{}
	intensityCounts := map[string]int{}
	siteCounts := map[string]int{}
	var maxRainfall float64

	for i := range readings {
		r := &readings[i]
		measurementCounts[r.Measurement]++
		siteCounts[r.SiteID]++
		if r.Intensity != "" {
			intensityCounts[r.Intensity]++
		}
		if r.Measurement == domain.MeasurementRainfall && r.Value > maxRainfall {
			maxRainfall = r.Value
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(readings))
	fmt.Printf("By measurement: rainfall=%d, river_level=%d, water_temp=%d\n",
		measurementCounts[domain.MeasurementRainfall],
		measurementCounts[domain.MeasurementRiverLevel],
		measurementCounts[domain.MeasurementWaterTemp])
	fmt.Printf("Rainfall intensity: slight=%d, moderate=%d, heavy=%d, violent=%d\n",
		intensityCounts["slight"], intensityCounts["moderate"],
		intensityCounts["heavy"], intensityCounts["violent"])
	fmt.Printf("Max rainfall: %g mm\n", maxRainfall)

	sites := make([]string, 0, len(siteCounts))
	for s := range siteCounts {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	fmt.Printf("Sites (%d): ", len(sites))
	for _, s := range sites {
		fmt.Printf("%s=%d ", s, siteCounts[s])
	}
	fmt.Println()
}

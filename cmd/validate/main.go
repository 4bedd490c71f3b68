// Command validate performs end-to-end data integrity checks across the
// catchment mock fixtures: the raw reading JSON, the enriched reading JSON,
// and an optional boundary file. It verifies transformation reproducibility,
// enrichment correctness, boundary admission, and statistics sanity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/readings_240426_raw.json \
//	  -enriched-json data/mock/readings_240426_enriched.json \
//	  -boundary data/boundaries/pang.geojson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riverwatch/catchment-service/internal/domain"
	"github.com/riverwatch/catchment-service/internal/registry"
	"github.com/riverwatch/catchment-service/internal/store"
	"github.com/riverwatch/catchment-service/internal/timetable"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to the raw reading JSON fixture")
	enrichedJSON := flag.String("enriched-json", "", "path to the enriched reading JSON fixture")
	boundary := flag.String("boundary", "", "optional catchment boundary file")
	flag.Parse()

	if *rawJSON == "" || *enrichedJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *enrichedJSON, *boundary); code != 0 {
		os.Exit(code)
	}
}

func run(rawJSONPath, enrichedJSONPath, boundaryPath string) int {
	// Set a fixed clock matching genreadings for ID reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Catchment Fixture Integrity Validation ===")
	fmt.Println()

	rawRecords, err := loadJSON[domain.RawLoggerRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	enriched, err := loadJSON[domain.Reading](enrichedJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load enriched JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReproducibility(rawRecords, enriched),
		validateEnrichment(enriched),
		validateAdmission(enriched, boundaryPath),
		validateStatistics(enriched),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d enriched\n", len(rawRecords), len(enriched))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// validateReproducibility re-runs the domain transform over the raw fixture
// and checks the enriched fixture matches record for record.
func validateReproducibility(rawRecords []domain.RawLoggerRecord, enriched []domain.Reading) *phase {
	p := &phase{name: "Raw → enriched reproducibility"}

	if len(rawRecords) != len(enriched) {
		p.errorf("record count mismatch: %d raw vs %d enriched", len(rawRecords), len(enriched))
		return p
	}

	for i, rec := range rawRecords {
		payload, err := json.Marshal(rec)
		if err != nil {
			p.errorf("record %d: marshal: %v", i, err)
			continue
		}
		parsed, err := domain.ParseRawReading(domain.RawReading{Value: payload, Timestamp: baseDate})
		if err != nil {
			p.errorf("record %d: parse: %v", i, err)
			continue
		}
		got := domain.EnrichReading(parsed)
		want := enriched[i]

		if got.ID != want.ID {
			p.errorf("record %d: ID %q, fixture has %q", i, got.ID, want.ID)
		}
		if got.Value != want.Value {
			p.errorf("record %d: value %g, fixture has %g", i, got.Value, want.Value)
		}
		if !got.Time.Equal(want.Time) {
			p.errorf("record %d: time %s, fixture has %s", i, got.Time, want.Time)
		}
	}
	return p
}

// validateEnrichment checks measurement types, default units, intensity
// classes, and date buckets on the enriched fixture.
func validateEnrichment(enriched []domain.Reading) *phase {
	p := &phase{name: "Enrichment integrity"}

	defaultUnits := map[string]string{
		domain.MeasurementRainfall:   "mm",
		domain.MeasurementRiverLevel: "m",
		domain.MeasurementWaterTemp:  "degC",
	}

	for i, r := range enriched {
		if _, ok := defaultUnits[r.Measurement]; !ok {
			p.errorf("record %d (%s): unknown measurement %q", i, r.ID, r.Measurement)
			continue
		}
		if r.Units == "" {
			p.errorf("record %d (%s): empty units, expected default %q", i, r.ID, defaultUnits[r.Measurement])
		}
		if r.Measurement != domain.MeasurementRainfall && r.Intensity != "" {
			p.errorf("record %d (%s): %s reading carries intensity %q", i, r.ID, r.Measurement, r.Intensity)
		}
		if r.Measurement == domain.MeasurementRainfall && r.Value >= 50 && r.Intensity != "violent" {
			p.errorf("record %d (%s): %g mm should be violent, got %q", i, r.ID, r.Value, r.Intensity)
		}
		if want := r.Time.UTC().Format("2006-01-02"); r.DateBucket != want {
			p.errorf("record %d (%s): date bucket %q, expected %q", i, r.ID, r.DateBucket, want)
		}
	}
	return p
}

// validateAdmission replays site admission against the boundary and checks
// each site's admission outcome stays stable across its readings.
func validateAdmission(enriched []domain.Reading, boundaryPath string) *phase {
	p := &phase{name: "Boundary admission"}

	var catchment *domain.Catchment
	if boundaryPath != "" {
		var err error
		catchment, err = domain.NewCatchmentFromBoundary("validation", boundaryPath)
		if err != nil {
			p.errorf("load boundary: %v", err)
			return p
		}
	} else {
		catchment = domain.NewCatchment("validation")
	}

	sites := registry.New(catchment)
	admitted := map[string]bool{}
	for _, r := range enriched {
		ok := sites.Admit(r.SiteID, r.Geo)
		if prev, seen := admitted[r.SiteID]; seen && prev != ok {
			p.errorf("site %s: admission flapped between readings", r.SiteID)
		}
		admitted[r.SiteID] = ok
	}

	in := 0
	for _, ok := range admitted {
		if ok {
			in++
		}
	}
	fmt.Printf("  admission: %d of %d sites inside the catchment\n", in, len(admitted))
	return p
}

// validateStatistics pivots the enriched readings into frames and sanity
// checks the daily aggregations and normalisation.
func validateStatistics(enriched []domain.Reading) *phase {
	p := &phase{name: "Statistics sanity"}

	readings := store.New()
	for _, r := range enriched {
		readings.Add(r)
	}

	for _, m := range readings.Measurements() {
		frame, err := readings.Frame(m)
		if err != nil {
			p.errorf("%s: pivot: %v", m, err)
			continue
		}

		dailyMean, err := timetable.DailyMean(frame)
		if err != nil {
			p.errorf("%s: daily mean: %v", m, err)
			continue
		}
		dailyMin, err := timetable.DailyMin(frame)
		if err != nil {
			p.errorf("%s: daily min: %v", m, err)
			continue
		}
		for i := range dailyMean.Index() {
			for j := range dailyMean.Columns() {
				lo, avg := dailyMin.At(i, j), dailyMean.At(i, j)
				if !math.IsNaN(avg) && lo > avg {
					p.errorf("%s: date %d column %d: min %g exceeds mean %g", m, i, j, lo, avg)
				}
			}
		}

		norm := timetable.Normalise(frame)
		for _, col := range norm.Columns() {
			values, _ := norm.Column(col)
			top := math.Inf(-1)
			for _, v := range values {
				if !math.IsNaN(v) && v > top {
					top = v
				}
			}
			if !math.IsInf(top, -1) && math.Abs(top-1) > 1e-9 {
				p.errorf("%s: column %s: normalised maximum %g, expected 1", m, col, top)
			}
		}
	}
	return p
}

// Package store accumulates admitted readings in memory and pivots them
// into time-indexed frames for the statistics layer.
package store

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/riverwatch/catchment-service/internal/domain"
	"github.com/riverwatch/catchment-service/internal/timetable"
)

// ErrUnknownMeasurement is returned by Frame for a measurement type with no
// stored readings.
var ErrUnknownMeasurement = errors.New("no readings for measurement")

// series holds all readings of one measurement type, keyed by site and
// timestamp. A replayed reading for the same site and timestamp overwrites
// the previous value, keeping the store idempotent.
type series struct {
	siteOrder []string
	values    map[string]map[int64]float64 // site ID → unix nano → value
	times     map[int64]time.Time
}

// Readings is a thread-safe in-memory accumulator of admitted readings,
// grouped by measurement type. It implements pipeline.BatchLoader so the
// pipeline can load into it alongside the Kafka sink.
type Readings struct {
	mu            sync.RWMutex
	byMeasurement map[string]*series
}

// New creates an empty readings store.
func New() *Readings {
	return &Readings{byMeasurement: make(map[string]*series)}
}

// Add stores one reading. Readings without a measurement type or site ID
// carry no usable coordinates in the pivot and are dropped.
func (r *Readings) Add(reading domain.Reading) {
	if reading.Measurement == "" || reading.SiteID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byMeasurement[reading.Measurement]
	if !ok {
		s = &series{
			values: make(map[string]map[int64]float64),
			times:  make(map[int64]time.Time),
		}
		r.byMeasurement[reading.Measurement] = s
	}

	if _, ok := s.values[reading.SiteID]; !ok {
		s.values[reading.SiteID] = make(map[int64]float64)
		s.siteOrder = append(s.siteOrder, reading.SiteID)
	}
	key := reading.Time.UnixNano()
	s.values[reading.SiteID][key] = reading.Value
	s.times[key] = reading.Time
}

// LoadBatch stores a batch of readings. It never fails; the error return
// satisfies pipeline.BatchLoader.
func (r *Readings) LoadBatch(_ context.Context, readings []domain.Reading) error {
	for _, reading := range readings {
		r.Add(reading)
	}
	return nil
}

// Measurements returns the measurement types seen so far, sorted.
func (r *Readings) Measurements() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byMeasurement))
	for m := range r.byMeasurement {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Sites returns the site IDs reporting the given measurement, in
// first-seen order.
func (r *Readings) Sites(measurement string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byMeasurement[measurement]
	if !ok {
		return nil
	}
	return append([]string(nil), s.siteOrder...)
}

// Frame pivots the stored readings of one measurement type into a
// time-indexed frame: columns are site IDs in first-seen order, the index
// is the sorted union of reading timestamps, and gaps are NaN.
func (r *Readings) Frame(measurement string) (*timetable.Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byMeasurement[measurement]
	if !ok {
		return nil, ErrUnknownMeasurement
	}

	keys := make([]int64, 0, len(s.times))
	for k := range s.times {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	index := make([]time.Time, len(keys))
	rows := make([][]float64, len(keys))
	for i, k := range keys {
		index[i] = s.times[k]
		rows[i] = make([]float64, len(s.siteOrder))
		for j, site := range s.siteOrder {
			if v, ok := s.values[site][k]; ok {
				rows[i][j] = v
			} else {
				rows[i][j] = math.NaN()
			}
		}
	}

	return timetable.New(index, append([]string(nil), s.siteOrder...), rows)
}

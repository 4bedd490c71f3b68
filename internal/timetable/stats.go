package timetable

import (
	"math"
	"sort"
	"time"
)

// reducer folds the non-NaN values of one column within one calendar date.
type reducer func(values []float64) float64

// DailyMean groups rows by calendar date and returns the arithmetic mean of
// each column per date. The result is indexed by date (midnight in the
// timestamp's own zone), ascending, with columns preserved.
func DailyMean(f *Frame) (*Frame, error) {
	return dailyAggregate(f, mean)
}

// DailyMin groups rows by calendar date and returns the minimum of each
// column per date.
func DailyMin(f *Frame) (*Frame, error) {
	return dailyAggregate(f, minimum)
}

// DailyMax groups rows by calendar date and returns the maximum of each
// column per date.
func DailyMax(f *Frame) (*Frame, error) {
	return dailyAggregate(f, maximum)
}

// DailyTotal groups rows by calendar date and returns the sum of each
// column per date.
func DailyTotal(f *Frame) (*Frame, error) {
	return dailyAggregate(f, total)
}

// Normalise rescales every column independently by its maximum value,
// preserving the index, column labels, and row order. With non-negative
// input and a positive maximum each column lands in [0, 1]; a zero or
// all-NaN column divides to NaN.
func Normalise(f *Frame) *Frame {
	maxima := make([]float64, len(f.columns))
	for j := range f.columns {
		col := make([]float64, 0, len(f.rows))
		for i := range f.rows {
			col = append(col, f.rows[i][j])
		}
		maxima[j] = maximum(dropNaN(col))
	}

	rows := make([][]float64, len(f.rows))
	for i := range f.rows {
		rows[i] = make([]float64, len(f.columns))
		for j := range f.columns {
			rows[i][j] = f.rows[i][j] / maxima[j]
		}
	}
	return &Frame{
		index:   append([]time.Time(nil), f.index...),
		columns: append([]string(nil), f.columns...),
		rows:    rows,
	}
}

// dailyAggregate truncates each timestamp to its calendar date, groups rows
// per date, and reduces every column within each group.
func dailyAggregate(f *Frame, reduce reducer) (*Frame, error) {
	if !f.Indexed() {
		return nil, ErrNotTimeIndexed
	}

	groups := make(map[time.Time][]int)
	for i, ts := range f.index {
		d := truncateToDate(ts)
		groups[d] = append(groups[d], i)
	}

	dates := make([]time.Time, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([][]float64, len(dates))
	for di, d := range dates {
		rows[di] = make([]float64, len(f.columns))
		for j := range f.columns {
			values := make([]float64, 0, len(groups[d]))
			for _, i := range groups[d] {
				values = append(values, f.rows[i][j])
			}
			rows[di][j] = reduce(dropNaN(values))
		}
	}

	return &Frame{index: dates, columns: append([]string(nil), f.columns...), rows: rows}, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dropNaN(values []float64) []float64 {
	out := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minimum(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maximum(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func total(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

package timetable

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNotTimeIndexed is returned by the daily aggregations when a frame
	// carries no timestamp index, e.g. one built from raw rows with FromRows.
	ErrNotTimeIndexed = errors.New("frame has no timestamp index")

	// ErrShape is returned by New when index, columns, and rows disagree.
	ErrShape = errors.New("frame shape mismatch")
)

// Frame is a two-dimensional numeric table: an ordered timestamp index,
// ordered column labels (site IDs), and one float64 row per timestamp.
// Missing readings are represented as NaN.
type Frame struct {
	index   []time.Time
	columns []string
	rows    [][]float64
}

// New creates a time-indexed Frame. It requires one row per index entry and
// one value per column in every row.
func New(index []time.Time, columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) != len(index) {
		return nil, fmt.Errorf("%w: %d index entries but %d rows", ErrShape, len(index), len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrShape, i, len(row), len(columns))
		}
	}
	return &Frame{
		index:   append([]time.Time(nil), index...),
		columns: append([]string(nil), columns...),
		rows:    copyRows(rows),
	}, nil
}

// FromRows creates a Frame from raw rows with no timestamp index. Such a
// frame supports column-wise operations like Normalise, but the daily
// aggregations reject it with ErrNotTimeIndexed. Ragged rows are padded
// with NaN to the widest row.
func FromRows(columns []string, rows [][]float64) *Frame {
	width := len(columns)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(columns) < width {
		columns = append([]string(nil), columns...)
		for i := len(columns); i < width; i++ {
			columns = append(columns, fmt.Sprintf("c%d", i))
		}
	}

	padded := make([][]float64, len(rows))
	for i, row := range rows {
		padded[i] = make([]float64, width)
		copy(padded[i], row)
		for j := len(row); j < width; j++ {
			padded[i][j] = math.NaN()
		}
	}
	return &Frame{columns: append([]string(nil), columns...), rows: padded}
}

// Indexed reports whether the frame carries a timestamp index.
func (f *Frame) Indexed() bool { return len(f.index) > 0 }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Columns returns the column labels in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.columns...) }

// Index returns the timestamp index in order, nil for an unindexed frame.
func (f *Frame) Index() []time.Time {
	if f.index == nil {
		return nil
	}
	return append([]time.Time(nil), f.index...)
}

// Rows returns a copy of the numeric data.
func (f *Frame) Rows() [][]float64 { return copyRows(f.rows) }

// At returns the value at row i, column j.
func (f *Frame) At(i, j int) float64 { return f.rows[i][j] }

// Column returns the values of the named column in row order.
// The second return is false if the column does not exist.
func (f *Frame) Column(name string) ([]float64, bool) {
	for j, c := range f.columns {
		if c != name {
			continue
		}
		out := make([]float64, len(f.rows))
		for i := range f.rows {
			out[i] = f.rows[i][j]
		}
		return out, true
	}
	return nil, false
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

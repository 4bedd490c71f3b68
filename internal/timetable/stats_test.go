package timetable

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFrame(t *testing.T, index []time.Time, columns []string, rows [][]float64) *Frame {
	t.Helper()
	f, err := New(index, columns, rows)
	require.NoError(t, err)
	return f
}

func date(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return d
}

func TestDailyMean(t *testing.T) {
	t.Run("positive integers over one day", func(t *testing.T) {
		f := mustFrame(t,
			hourlyIndex(t, "2000-01-01", 1, 2, 3),
			[]string{"A", "B"},
			[][]float64{{1, 2}, {3, 4}, {5, 6}},
		)

		result, err := DailyMean(f)
		require.NoError(t, err)

		assert.Equal(t, []time.Time{date(t, "2000-01-01")}, result.Index())
		assert.Equal(t, []string{"A", "B"}, result.Columns())
		assert.Equal(t, [][]float64{{3.0, 4.0}}, result.Rows())
	})

	t.Run("zeros", func(t *testing.T) {
		f := mustFrame(t,
			hourlyIndex(t, "2000-01-01", 1, 2, 3),
			[]string{"A", "B"},
			[][]float64{{0, 0}, {0, 0}, {0, 0}},
		)

		result, err := DailyMean(f)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0.0, 0.0}}, result.Rows())
	})

	t.Run("rows grouped per calendar date in ascending order", func(t *testing.T) {
		index := append(hourlyIndex(t, "2000-01-02", 1, 23), hourlyIndex(t, "2000-01-01", 12)...)
		f := mustFrame(t, index, []string{"A"}, [][]float64{{10}, {20}, {4}})

		result, err := DailyMean(f)
		require.NoError(t, err)

		assert.Equal(t, []time.Time{date(t, "2000-01-01"), date(t, "2000-01-02")}, result.Index())
		assert.Equal(t, [][]float64{{4.0}, {15.0}}, result.Rows())
	})

	t.Run("duplicate timestamps aggregate together", func(t *testing.T) {
		ts := hourlyIndex(t, "2000-01-01", 1)[0]
		f := mustFrame(t, []time.Time{ts, ts}, []string{"A"}, [][]float64{{2}, {4}})

		result, err := DailyMean(f)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{3.0}}, result.Rows())
	})

	t.Run("NaN gaps skipped", func(t *testing.T) {
		f := mustFrame(t,
			hourlyIndex(t, "2000-01-01", 1, 2),
			[]string{"A", "B"},
			[][]float64{{1, math.NaN()}, {3, 6}},
		)

		result, err := DailyMean(f)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{2.0, 6.0}}, result.Rows())
	})

	t.Run("all-NaN column yields NaN", func(t *testing.T) {
		f := mustFrame(t,
			hourlyIndex(t, "2000-01-01", 1),
			[]string{"A"},
			[][]float64{{math.NaN()}},
		)

		result, err := DailyMean(f)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(result.At(0, 0)))
	})

	t.Run("unindexed frame rejected", func(t *testing.T) {
		f := FromRows(nil, [][]float64{{3, 4, 7}, {-3, 0, 5}})

		_, err := DailyMean(f)
		require.ErrorIs(t, err, ErrNotTimeIndexed)
	})
}

func TestDailyMin(t *testing.T) {
	t.Run("minimum per column per date", func(t *testing.T) {
		f := mustFrame(t,
			hourlyIndex(t, "2000-01-01", 1, 2, 3),
			[]string{"A", "B"},
			[][]float64{{4, -1}, {3, 0}, {5, 6}},
		)

		result, err := DailyMin(f)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{3.0, -1.0}}, result.Rows())
	})

	t.Run("unindexed frame rejected", func(t *testing.T) {
		f := FromRows(nil, [][]float64{{3, 4, 7}, {-3, 0, 5}})

		_, err := DailyMin(f)
		require.ErrorIs(t, err, ErrNotTimeIndexed)
	})
}

func TestDailyMax(t *testing.T) {
	f := mustFrame(t,
		hourlyIndex(t, "2000-01-01", 1, 2, 3),
		[]string{"A", "B"},
		[][]float64{{4, -1}, {3, 0}, {5, 6}},
	)

	result, err := DailyMax(f)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5.0, 6.0}}, result.Rows())
}

func TestDailyTotal(t *testing.T) {
	f := mustFrame(t,
		hourlyIndex(t, "2000-01-01", 1, 2, 3),
		[]string{"A", "B"},
		[][]float64{{1, 2}, {3, 4}, {5, 6}},
	)

	result, err := DailyTotal(f)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{9.0, 12.0}}, result.Rows())
}

func TestNormalise(t *testing.T) {
	t.Run("each column divided by its maximum", func(t *testing.T) {
		index := hourlyIndex(t, "2000-01-01", 1, 2, 3)
		f := mustFrame(t, index,
			[]string{"A", "B", "C"},
			[][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		)

		result := Normalise(f)

		assert.Equal(t, index, result.Index())
		assert.Equal(t, []string{"A", "B", "C"}, result.Columns())

		expected := [][]float64{
			{0.14, 0.25, 0.33},
			{0.57, 0.63, 0.66},
			{1.0, 1.0, 1.0},
		}
		if diff := cmp.Diff(expected, result.Rows(), cmpopts.EquateApprox(0, 0.01)); diff != "" {
			t.Errorf("normalised rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("input frame unchanged", func(t *testing.T) {
		f := mustFrame(t, hourlyIndex(t, "2000-01-01", 1), []string{"A"}, [][]float64{{4}})

		Normalise(f)
		assert.Equal(t, 4.0, f.At(0, 0))
	})

	t.Run("unindexed frame allowed", func(t *testing.T) {
		f := FromRows([]string{"A", "B"}, [][]float64{{1, 10}, {2, 20}})

		result := Normalise(f)
		assert.Equal(t, [][]float64{{0.5, 0.5}, {1.0, 1.0}}, result.Rows())
	})

	t.Run("zero column divides to NaN", func(t *testing.T) {
		f := mustFrame(t, hourlyIndex(t, "2000-01-01", 1, 2), []string{"A"}, [][]float64{{0}, {0}})

		result := Normalise(f)
		assert.True(t, math.IsNaN(result.At(0, 0)))
	})
}

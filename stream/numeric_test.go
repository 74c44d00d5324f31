package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumIntegers(t *testing.T) {
	got, err := Sum(RangeClosed(1, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(5050), got)
}

func TestSumEmptyIsZero(t *testing.T) {
	got, err := Sum(EmptyStream[int]())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestSumFloatCompensatesRounding(t *testing.T) {
	// Plain left-to-right addition loses the 1.0 entirely:
	// 1e16 + 1.0 == 1e16 in float64.
	got, err := SumFloat(Of(1e16, 1.0, -1e16))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestSumFloatManySmallTerms(t *testing.T) {
	terms := make([]float64, 10000)
	for i := range terms {
		terms[i] = 0.1
	}
	got, err := SumFloat(FromSlice(terms))
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, got, 1e-9)
}

func TestSumFloatInfinities(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		check func(t *testing.T, got float64)
	}{
		{
			name:  "mixed infinities give nan",
			input: []float64{math.Inf(1), math.Inf(-1)},
			check: func(t *testing.T, got float64) { assert.True(t, math.IsNaN(got)) },
		},
		{
			name:  "uniform positive infinity is preserved",
			input: []float64{math.Inf(1), math.Inf(1)},
			check: func(t *testing.T, got float64) { assert.True(t, math.IsInf(got, 1)) },
		},
		{
			name:  "uniform negative infinity is preserved",
			input: []float64{1.5, math.Inf(-1), 2.5},
			check: func(t *testing.T, got float64) { assert.True(t, math.IsInf(got, -1)) },
		},
		{
			name:  "nan element propagates",
			input: []float64{1.0, math.NaN(), 2.0},
			check: func(t *testing.T, got float64) { assert.True(t, math.IsNaN(got)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SumFloat(FromSlice(tt.input))
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestSumFloatEmptyIsZero(t *testing.T) {
	got, err := SumFloat(EmptyStream[float64]())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestAverageFloat(t *testing.T) {
	got, ok, err := AverageFloat(Of(1.0, 2.0, 3.0, 4.0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.5, got)
}

func TestAverageFloatEmpty(t *testing.T) {
	_, ok, err := AverageFloat(EmptyStream[float64]())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarizeInt(t *testing.T) {
	stats, err := SummarizeInt(Of(3, 1, 4, 1, 5, 9, 2, 6))
	require.NoError(t, err)
	assert.Equal(t, int64(8), stats.Count)
	assert.Equal(t, int64(31), stats.Sum)
	assert.Equal(t, 1, stats.Min)
	assert.Equal(t, 9, stats.Max)

	avg, ok := stats.Average()
	require.True(t, ok)
	assert.InDelta(t, 3.875, avg, 1e-12)
}

func TestSummarizeIntEmpty(t *testing.T) {
	stats, err := SummarizeInt(EmptyStream[int]())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.Sum)

	_, ok := stats.Average()
	assert.False(t, ok)
}

func TestSummarizeFloat(t *testing.T) {
	stats, err := SummarizeFloat(Of(2.5, -1.5, 4.0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.InDelta(t, 5.0, stats.Sum, 1e-12)
	assert.Equal(t, -1.5, stats.Min)
	assert.Equal(t, 4.0, stats.Max)
}

func TestSummarizeFloatEmptyExtrema(t *testing.T) {
	stats, err := SummarizeFloat(EmptyStream[float64]())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.True(t, math.IsInf(stats.Min, 1), "empty summary reports Min=+Inf")
	assert.True(t, math.IsInf(stats.Max, -1), "empty summary reports Max=-Inf")
}

func TestSummarizeFloatNaNPoisonsExtrema(t *testing.T) {
	stats, err := SummarizeFloat(Of(1.0, math.NaN(), 2.0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.True(t, math.IsNaN(stats.Min))
	assert.True(t, math.IsNaN(stats.Max))
}

func TestMinOfMaxOf(t *testing.T) {
	minV, ok, err := MinOf(Of("pear", "apple", "plum"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "apple", minV)

	maxV, ok, err := MaxOf(Of("pear", "apple", "plum"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "plum", maxV)

	_, ok, err = MinOf(EmptyStream[int]())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSumFloatOverDerivedStages(t *testing.T) {
	got, err := SumFloat(Map(RangeClosed(1, 10), func(v int64) float64 {
		return float64(v) / 2
	}))
	require.NoError(t, err)
	assert.InDelta(t, 27.5, got, 1e-12)
}

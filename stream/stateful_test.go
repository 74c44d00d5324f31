package stream

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedNatural(t *testing.T) {
	got, err := SortedNatural(Of(5, 3, 1, 4, 2)).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestSortedNaturalStrings(t *testing.T) {
	got, err := SortedNatural(Of("pear", "apple", "cherry")).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "cherry", "pear"}, got)
}

func TestSortedCustomComparator(t *testing.T) {
	got, err := Of(2, 5, 1, 4).
		Sorted(func(a, b int) int { return cmp.Compare(b, a) }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 2, 1}, got)
}

func TestSortedNaturalElidedOnSortedSource(t *testing.T) {
	s := RangeStream(0, 10)
	assert.Same(t, s, SortedNatural(s), "naturally sorted source needs no sort stage")

	mapped := Map(RangeStream(0, 10), func(v int64) int64 { return -v })
	assert.NotSame(t, mapped, SortedNatural(mapped), "mapping invalidates sort order")
}

func TestSortedThenLimitFlushesOnlyRequested(t *testing.T) {
	got, err := SortedNatural(Of(9, 7, 5, 3, 1)).Limit(2).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got)
}

func TestSortedConsumesUpstreamBeforeEmitting(t *testing.T) {
	var accepted []int
	got, err := SortedNatural(Of(3, 1, 2).Peek(func(v int) { accepted = append(accepted, v) })).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, []int{3, 1, 2}, accepted, "sort buffers the whole upstream first")
}

func TestDistinctFirstOccurrenceWins(t *testing.T) {
	got, err := Distinct(Of(3, 1, 3, 2, 1, 3)).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, got)
}

func TestDistinctElidedOnDistinctSource(t *testing.T) {
	s := RangeStream(0, 5)
	assert.Same(t, s, Distinct(s), "range elements are distinct by construction")
}

func TestDistinctBy(t *testing.T) {
	got, err := DistinctBy(Of("apple", "avocado", "banana", "blueberry", "cherry"),
		func(v string) byte { return v[0] }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name     string
		skip     int64
		expected []int64
	}{
		{"skip none", 0, []int64{0, 1, 2, 3, 4}},
		{"skip some", 2, []int64{2, 3, 4}},
		{"skip all", 5, []int64{}},
		{"skip past end", 50, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangeStream(0, 5).Skip(tt.skip).ToSlice()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSkipZeroIsElided(t *testing.T) {
	s := Of(1, 2, 3)
	assert.Same(t, s, s.Skip(0))
}

func TestLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		expected []int64
	}{
		{"limit zero", 0, []int64{}},
		{"limit some", 3, []int64{0, 1, 2}},
		{"limit exact", 5, []int64{0, 1, 2, 3, 4}},
		{"limit past end", 50, []int64{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangeStream(0, 5).Limit(tt.limit).ToSlice()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSkipLimitComposition(t *testing.T) {
	got, err := RangeStream(0, 100).Skip(10).Limit(20).ToSlice()
	require.NoError(t, err)

	expected := make([]int64, 0, 20)
	for i := int64(10); i < 30; i++ {
		expected = append(expected, i)
	}
	assert.Equal(t, expected, got)
}

func TestSkipLimitOnUnsizedSource(t *testing.T) {
	ch := make(chan int, 8)
	for i := 1; i <= 6; i++ {
		ch <- i
	}
	close(ch)

	got, err := FromChan(ch).Skip(1).Limit(2).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
}

func TestLimitStopsInfiniteSource(t *testing.T) {
	n := int64(0)
	got, err := Generate(func() int64 { n++; return n }).Limit(5).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
}

func TestLimitHaltsProductionThroughStatelessStages(t *testing.T) {
	produced := int64(0)
	peeked := 0

	src := Generate(func() int64 { produced++; return produced })
	got, err := Map(src, func(v int64) int64 { return v + 100 }).
		Filter(func(v int64) bool { return v%2 == 0 }).
		Peek(func(int64) { peeked++ }).
		Limit(5).
		ToSlice()
	require.NoError(t, err)

	assert.Equal(t, []int64{102, 104, 106, 108, 110}, got)
	assert.Equal(t, 5, peeked)
	assert.EqualValues(t, 10, produced, "the advance after the fifth kept element must not happen")
}

func TestTakeWhile(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
	}{
		{"cuts at first failure", []int{1, 2, 3, 4, 1, 2}, []int{1, 2, 3}},
		{"keeps all when none fail", []int{1, 2, 3}, []int{1, 2, 3}},
		{"empty when first fails", []int{9, 1, 2}, []int{}},
		{"empty input", []int{}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromSlice(tt.input).
				TakeWhile(func(v int) bool { return v < 4 }).
				ToSlice()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTakeWhileStopsInfiniteSource(t *testing.T) {
	n := 0
	got, err := Generate(func() int { n++; return n }).
		TakeWhile(func(v int) bool { return v < 5 }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	assert.Less(t, n, 100)
}

func TestTakeWhilePredicateNotCalledAfterCut(t *testing.T) {
	calls := 0
	_, err := Of(1, 5, 1, 1, 1).
		TakeWhile(func(v int) bool { calls++; return v < 5 }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "predicate stops being applied after the first failure")
}

func TestDropWhile(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
	}{
		{"drops leading run", []int{1, 2, 3, 4, 1, 2}, []int{3, 4, 1, 2}},
		{"drops nothing when first fails", []int{9, 1, 2}, []int{9, 1, 2}},
		{"drops everything when none fail", []int{1, 2, 1}, []int{}},
		{"empty input", []int{}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromSlice(tt.input).
				DropWhile(func(v int) bool { return v < 3 }).
				ToSlice()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatefulStagesCompose(t *testing.T) {
	got, err := SortedNatural(Distinct(Of(4, 2, 4, 1, 3, 2, 5))).
		Skip(1).
		Limit(3).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, got)
}

package spliterator

import (
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinct_Sequential(t *testing.T) {
	s := DistinctSpliterator(OfSlice([]int{1, 2, 1, 3, 2, 4, 1}))
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, drain(s))
}

func TestDistinct_TryAdvanceSkipsDuplicates(t *testing.T) {
	s := DistinctSpliterator(OfSlice([]string{"a", "a", "a", "b"}))

	got := []string{}
	for s.TryAdvance(func(v string) { got = append(got, v) }) {
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDistinct_SharedSeenAcrossSplits(t *testing.T) {
	data := make([]int, 0, 400)
	for i := 0; i < 400; i++ {
		data = append(data, i%7)
	}

	s := DistinctSpliterator(OfSlice(data))
	leaves := splitLeaves(s, 3)
	require.Greater(t, len(leaves), 1)

	var mu sync.Mutex
	got := []int{}
	var wg sync.WaitGroup
	for _, leaf := range leaves {
		wg.Add(1)
		go func(sp Spliterator[int]) {
			defer wg.Done()
			sp.ForEachRemaining(func(v int) {
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			})
		}(leaf)
	}
	wg.Wait()

	sort.Ints(got)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, got, "each value emitted exactly once across all splits")
}

func TestDistinct_Characteristics(t *testing.T) {
	s := DistinctSpliterator(OfSlice([]int{1, 2, 3}))
	c := s.Characteristics()
	assert.True(t, c.Has(Distinct))
	assert.False(t, c.HasAny(Sized|Subsized|Ordered|Sorted))
}

func TestDelegating_LazyBinding(t *testing.T) {
	calls := 0
	s := Delegating(func() Spliterator[int] {
		calls++
		return OfSlice([]int{1, 2, 3})
	})

	assert.Equal(t, 0, calls, "supplier must not run until first use")

	assert.Equal(t, int64(3), s.EstimateSize())
	assert.Equal(t, 1, calls)

	assert.Equal(t, []int{1, 2, 3}, drain(s))
	assert.Equal(t, 1, calls, "supplier memoized")
}

func TestDelegating_DelegatesAll(t *testing.T) {
	s := Delegating(func() Spliterator[int] { return OfSlice(intRange(10)) })

	assert.True(t, s.Characteristics().Has(Ordered|Sized))
	left := s.TrySplit()
	require.NotNil(t, left)
	assert.Equal(t, int64(10), left.EstimateSize()+s.EstimateSize())
}

func TestConcat_Order(t *testing.T) {
	s := Concat(OfSlice([]int{1, 2}), OfSlice([]int{3, 4, 5}))

	assert.Equal(t, int64(5), s.EstimateSize())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, drain(s))
}

func TestConcat_TryAdvanceCrossesBoundary(t *testing.T) {
	s := Concat(OfSlice([]string{"a"}), OfSlice([]string{"b"}))

	got := []string{}
	for s.TryAdvance(func(v string) { got = append(got, v) }) {
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestConcat_FirstSplitRecoversInputs(t *testing.T) {
	s := Concat(OfSlice([]int{1, 2}), OfSlice([]int{3, 4}))

	left := s.TrySplit()
	require.NotNil(t, left)
	assert.Equal(t, []int{1, 2}, drain(left), "split hands the first input off wholesale")
	assert.Equal(t, []int{3, 4}, drain(s), "receiver keeps the second input")
}

func TestConcat_SplitAfterBoundaryDelegates(t *testing.T) {
	s := Concat(Empty[int](), OfSlice(intRange(8)))
	require.True(t, s.TryAdvance(func(int) {}))

	left := s.TrySplit()
	require.NotNil(t, left)
	assert.Equal(t, int64(7), left.EstimateSize()+s.EstimateSize())
}

func TestConcat_Characteristics(t *testing.T) {
	s := Concat(OfSlice([]int{1, 2}), OfSlice([]int{2, 3}))
	c := s.Characteristics()

	assert.True(t, c.Has(Ordered|Sized))
	assert.False(t, c.HasAny(Distinct|Sorted), "distinctness and sortedness do not survive concatenation")
}

func TestConcat_SizeOverflowMasksSized(t *testing.T) {
	gen := func() Spliterator[int] { return Generate(func() int { return 0 }) }

	s := Concat(gen(), gen())
	assert.Equal(t, int64(math.MaxInt64), s.EstimateSize())
	assert.False(t, s.Characteristics().HasAny(Sized|Subsized))
}

package spliterator

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestWindow_SkipLimitSequential(t *testing.T) {
	w := Window(OfSlice(intRange(100)), 10, 20)

	got := drain(w)
	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, 10+i, v)
	}
}

func TestWindow_TryAdvanceOnly(t *testing.T) {
	w := Window(OfSlice(intRange(100)), 10, 20)

	got := []int{}
	for w.TryAdvance(func(v int) { got = append(got, v) }) {
	}
	require.Len(t, got, 20)
	assert.Equal(t, 10, got[0])
	assert.Equal(t, 29, got[19])
}

func TestWindow_SkipOnly(t *testing.T) {
	w := Window(OfSlice(intRange(10)), 7, -1)
	assert.Equal(t, []int{7, 8, 9}, drain(w))
}

func TestWindow_LimitBeyondSource(t *testing.T) {
	w := Window(OfSlice(intRange(5)), 2, 100)
	assert.Equal(t, []int{2, 3, 4}, drain(w))
}

func TestWindow_SkipBeyondSource(t *testing.T) {
	w := Window(OfSlice(intRange(5)), 9, 3)
	assert.Empty(t, drain(w))
	assert.Equal(t, int64(0), w.EstimateSize())
}

func TestWindow_EstimateSize(t *testing.T) {
	w := Window(OfSlice(intRange(100)), 10, 20)
	assert.Equal(t, int64(20), w.EstimateSize())

	// Consuming elements shrinks the estimate.
	w.TryAdvance(func(int) {})
	assert.Equal(t, int64(19), w.EstimateSize())
}

func TestWindow_SplitPartition(t *testing.T) {
	w := Window(OfSlice(intRange(100)), 10, 20)

	leaves := splitLeaves(w, 4)
	require.Greater(t, len(leaves), 1, "sized source should split")

	got := []int{}
	for _, leaf := range leaves {
		got = append(got, drain(leaf)...)
	}
	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, 10+i, v, "prefix splits preserve encounter order")
	}
}

func TestWindow_SplitUnsplittableSource(t *testing.T) {
	// Iterate refuses to split; the window must too.
	w := Window(Iterate(0, func(v int) int { return v + 1 }), 3, 4)
	assert.Nil(t, w.TrySplit())
	assert.Equal(t, []int{3, 4, 5, 6}, drain(w))
}

func TestWindow_PreservesCharacteristics(t *testing.T) {
	w := Window(OfSlice(intRange(10)), 1, 5)
	assert.True(t, w.Characteristics().Has(Ordered|Sized))
}

func TestUnorderedWindow_ExactCount(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(100)), 10, 20)

	got := drain(w)
	require.Len(t, got, 20, "limit must be exact even though selection is arbitrary")
	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 100)
	}
}

func TestUnorderedWindow_TryAdvanceCount(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(50)), 5, 10)

	count := 0
	for w.TryAdvance(func(int) { count++ }) {
	}
	assert.Equal(t, 10, count)
}

func TestUnorderedWindow_SkipOnlyUnlimited(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(30)), 12, -1)

	got := drain(w)
	assert.Len(t, got, 18, "unlimited window emits everything past the skip total")
}

func TestUnorderedWindow_SharedPermitsAcrossSplits(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(1000)), 100, 50)

	leaves := splitLeaves(w, 3)
	require.Greater(t, len(leaves), 1)

	var total atomic.Int64
	var wg sync.WaitGroup
	for _, leaf := range leaves {
		wg.Add(1)
		go func(s Spliterator[int]) {
			defer wg.Done()
			s.ForEachRemaining(func(int) { total.Add(1) })
		}(leaf)
	}
	wg.Wait()

	assert.Equal(t, int64(50), total.Load(), "splits share one permit pool")
}

func TestUnorderedWindow_SplitDeniedWhenExhausted(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(10)), 0, 3)
	drain(w)
	assert.Nil(t, w.TrySplit())
}

func TestUnorderedWindow_DropsOrderCharacteristics(t *testing.T) {
	w := UnorderedWindow(OfSlice(intRange(10)), 0, 5)
	c := w.Characteristics()
	assert.False(t, c.HasAny(Sized|Subsized|Ordered))
}

func TestWindow_NegativeSkipPanics(t *testing.T) {
	assert.Panics(t, func() { Window(OfSlice(intRange(5)), -1, 2) })
	assert.Panics(t, func() { UnorderedWindow(OfSlice(intRange(5)), -1, 2) })
}

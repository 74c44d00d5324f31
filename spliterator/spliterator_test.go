package spliterator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain collects every remaining element.
func drain[T any](s Spliterator[T]) []T {
	out := []T{}
	s.ForEachRemaining(func(v T) { out = append(out, v) })
	return out
}

// splitLeaves recursively splits s and returns the leaves in encounter
// order (TrySplit hands back a prefix).
func splitLeaves[T any](s Spliterator[T], depth int) []Spliterator[T] {
	if depth == 0 {
		return []Spliterator[T]{s}
	}
	left := s.TrySplit()
	if left == nil {
		return []Spliterator[T]{s}
	}
	leaves := splitLeaves(left, depth-1)
	return append(leaves, splitLeaves(s, depth-1)...)
}

func TestCharacteristics_Bits(t *testing.T) {
	c := Ordered | Sized | Subsized

	assert.True(t, c.Has(Ordered))
	assert.True(t, c.Has(Sized|Subsized))
	assert.False(t, c.Has(Sorted))
	assert.False(t, c.Has(Ordered|Sorted))
	assert.True(t, c.HasAny(Sorted|Sized))

	assert.True(t, c.With(Sorted).Has(Sorted))
	assert.False(t, c.Without(Ordered).Has(Ordered))
	assert.Equal(t, "ordered|sized|subsized", c.String())
	assert.Equal(t, "none", Characteristics(0).String())
}

func TestOfSlice_Traversal(t *testing.T) {
	s := OfSlice([]int{1, 2, 3, 4, 5})

	require.Equal(t, int64(5), s.EstimateSize())
	assert.True(t, s.Characteristics().Has(Ordered|Sized|Subsized|Immutable))

	var first int
	require.True(t, s.TryAdvance(func(v int) { first = v }))
	assert.Equal(t, 1, first)
	assert.Equal(t, int64(4), s.EstimateSize())

	assert.Equal(t, []int{2, 3, 4, 5}, drain(s))
	assert.Equal(t, int64(0), s.EstimateSize())
	assert.False(t, s.TryAdvance(func(int) {}))
}

func TestOfSlice_SplitConservation(t *testing.T) {
	s := OfSlice([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	before := s.EstimateSize()

	left := s.TrySplit()
	require.NotNil(t, left)
	assert.Equal(t, before, left.EstimateSize()+s.EstimateSize())

	// Prefix goes to the split, suffix stays.
	assert.Equal(t, []int{0, 1, 2, 3, 4}, drain(left))
	assert.Equal(t, []int{5, 6, 7, 8, 9}, drain(s))
}

func TestOfSlice_SplitExhausted(t *testing.T) {
	s := OfSlice([]int{1})
	assert.Nil(t, s.TrySplit())

	empty := Empty[string]()
	assert.Nil(t, empty.TrySplit())
	assert.Equal(t, int64(0), empty.EstimateSize())
	assert.False(t, empty.TryAdvance(func(string) {}))
}

func TestRange_Values(t *testing.T) {
	assert.Equal(t, []int64{3, 4, 5, 6}, drain(Range(3, 7)))
	assert.Equal(t, []int64{3, 4, 5, 6, 7}, drain(RangeClosed(3, 7)))
	assert.Empty(t, drain(Range(5, 5)))
	assert.Empty(t, drain(Range(5, 3)))
	assert.Empty(t, drain(RangeClosed(5, 3)))
}

func TestRange_Characteristics(t *testing.T) {
	s := Range(0, 100)
	assert.True(t, s.Characteristics().Has(Ordered|Sized|Subsized|Sorted|Distinct|Nonnull))

	hc, ok := s.(HasComparator[int64])
	require.True(t, ok)
	assert.Nil(t, hc.Comparator(), "natural order reports a nil comparator")
}

func TestRange_SplitConservation(t *testing.T) {
	s := Range(0, 101)
	left := s.TrySplit()
	require.NotNil(t, left)
	require.Equal(t, int64(101), left.EstimateSize()+s.EstimateSize())

	all := append(drain(left), drain(s)...)
	require.Len(t, all, 101)
	for i, v := range all {
		assert.Equal(t, int64(i), v)
	}
}

func TestGenerate_AlwaysProduces(t *testing.T) {
	n := 0
	s := Generate(func() int { n++; return n })

	for i := 1; i <= 5; i++ {
		var got int
		require.True(t, s.TryAdvance(func(v int) { got = v }))
		assert.Equal(t, i, got)
	}
	assert.Equal(t, int64(math.MaxInt64), Generate(func() int { return 0 }).EstimateSize())
	assert.Equal(t, Immutable, s.Characteristics())
}

func TestGenerate_SplitEstimateDecay(t *testing.T) {
	s := Generate(func() int { return 0 })

	split := s.TrySplit()
	require.NotNil(t, split)
	assert.Equal(t, int64(math.MaxInt64)>>1, s.EstimateSize())
	assert.Equal(t, s.EstimateSize(), split.EstimateSize())

	// Estimate decays geometrically until splitting stops entirely.
	for i := 0; i < 64; i++ {
		if s.TrySplit() == nil {
			break
		}
	}
	assert.Equal(t, int64(0), s.EstimateSize())
	assert.Nil(t, s.TrySplit())

	// An unsplittable generator still produces.
	assert.True(t, s.TryAdvance(func(int) {}))
}

func TestIterate_Sequence(t *testing.T) {
	s := Iterate(1, func(v int) int { return v * 2 })

	got := []int{}
	for i := 0; i < 6; i++ {
		require.True(t, s.TryAdvance(func(v int) { got = append(got, v) }))
	}
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32}, got)
	assert.Nil(t, s.TrySplit())
	assert.True(t, s.Characteristics().Has(Ordered))
}

func TestFromSeq_PullAndDrain(t *testing.T) {
	seq := func(yield func(int) bool) {
		for i := 1; i <= 4; i++ {
			if !yield(i) {
				return
			}
		}
	}

	s := FromSeq(seq)
	var first int
	require.True(t, s.TryAdvance(func(v int) { first = v }))
	assert.Equal(t, 1, first)
	assert.Equal(t, []int{2, 3, 4}, drain(s))
	assert.False(t, s.TryAdvance(func(int) {}))
	assert.Equal(t, int64(0), s.EstimateSize())

	// Untouched spliterator takes the direct range path.
	assert.Equal(t, []int{1, 2, 3, 4}, drain(FromSeq(seq)))
}

func TestSeq_RoundTripAndEarlyBreak(t *testing.T) {
	got := []int64{}
	for v := range Seq(Range(0, 5)) {
		got = append(got, v)
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, got)

	// Early break stops the traversal.
	got = got[:0]
	for v := range Seq(Range(0, 100)) {
		got = append(got, v)
		if v == 2 {
			break
		}
	}
	assert.Equal(t, []int64{0, 1, 2}, got)
}

func TestFromChan_DrainsUntilClosed(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "b"
	ch <- "c"
	close(ch)

	s := FromChan(ch)
	assert.True(t, s.Characteristics().Has(Concurrent))
	assert.Equal(t, []string{"a", "b", "c"}, drain(s))
	assert.False(t, s.TryAdvance(func(string) {}))
}

func TestFromChan_SplitsShareChannel(t *testing.T) {
	ch := make(chan int, 4)
	for i := 0; i < 4; i++ {
		ch <- i
	}
	close(ch)

	s := FromChan(ch)
	split := s.TrySplit()
	require.NotNil(t, split)

	total := len(drain(split)) + len(drain(s))
	assert.Equal(t, 4, total)
}

func TestExactSizeIfKnown(t *testing.T) {
	assert.Equal(t, int64(3), ExactSizeIfKnown(OfSlice([]int{1, 2, 3})))
	assert.Equal(t, int64(-1), ExactSizeIfKnown(Generate(func() int { return 0 })))
	assert.Equal(t, int64(-1), ExactSizeIfKnown(Iterate(0, func(v int) int { return v })))
}

func TestNilCallbackPanics(t *testing.T) {
	assert.Panics(t, func() { Generate[int](nil) })
	assert.Panics(t, func() { Iterate(0, nil) })
	assert.Panics(t, func() { FromSeq[int](nil) })
	assert.Panics(t, func() { FromChan[int](nil) })
	assert.Panics(t, func() { Delegating[int](nil) })
}

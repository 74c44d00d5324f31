package stream

import (
	"context"
	"errors"
	"slices"
	"testing"

	cerrors "github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/spliterator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Stream[int64]
		expected []int64
	}{
		{
			name:     "of values",
			build:    func() *Stream[int64] { return Of[int64](1, 2, 3) },
			expected: []int64{1, 2, 3},
		},
		{
			name:     "from slice",
			build:    func() *Stream[int64] { return FromSlice([]int64{4, 5, 6}) },
			expected: []int64{4, 5, 6},
		},
		{
			name:     "empty",
			build:    EmptyStream[int64],
			expected: []int64{},
		},
		{
			name:     "range half open",
			build:    func() *Stream[int64] { return RangeStream(0, 5) },
			expected: []int64{0, 1, 2, 3, 4},
		},
		{
			name:     "range empty when from equals to",
			build:    func() *Stream[int64] { return RangeStream(5, 5) },
			expected: []int64{},
		},
		{
			name:     "range closed includes upper bound",
			build:    func() *Stream[int64] { return RangeClosed(1, 5) },
			expected: []int64{1, 2, 3, 4, 5},
		},
		{
			name:     "iterate applies next to previous element",
			build:    func() *Stream[int64] { return Iterate(int64(1), func(x int64) int64 { return x * 2 }).Limit(5) },
			expected: []int64{1, 2, 4, 8, 16},
		},
		{
			name: "from spliterator",
			build: func() *Stream[int64] {
				return FromSpliterator(spliterator.OfSlice([]int64{7, 8}))
			},
			expected: []int64{7, 8},
		},
		{
			name: "from seq",
			build: func() *Stream[int64] {
				return FromSeq(slices.Values([]int64{9, 10, 11}))
			},
			expected: []int64{9, 10, 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build().ToSlice()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGenerateIsInfiniteUntilLimited(t *testing.T) {
	n := 0
	got, err := Generate(func() int {
		n++
		return n
	}).Limit(4).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	// Limit must stop the source; a few extra pulls from buffering are
	// fine, unbounded generation is not.
	assert.Less(t, n, 100)
}

func TestFromChanDrainsUntilClosed(t *testing.T) {
	ch := make(chan string, 4)
	ch <- "a"
	ch <- "b"
	ch <- "c"
	close(ch)

	got, err := FromChan(ch).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFromSupplierBindsLate(t *testing.T) {
	calls := 0
	s := FromSupplier(func() spliterator.Spliterator[int] {
		calls++
		return spliterator.Of(1, 2, 3)
	}, spliterator.Ordered|spliterator.Sized|spliterator.Subsized)

	s = Map(s, func(v int) int { return v + 1 })
	assert.Equal(t, 0, calls, "supplier must not bind before a terminal runs")

	got, err := s.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, got)
	assert.Equal(t, 1, calls)
}

func TestPipelineIsLazy(t *testing.T) {
	visited := 0
	s := Map(Of(1, 2, 3), func(v int) int {
		visited++
		return v * 10
	})
	assert.Equal(t, 0, visited, "intermediate stages must not run eagerly")

	got, err := s.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, got)
	assert.Equal(t, 3, visited)
}

func TestStreamIsOneShot(t *testing.T) {
	s := Of(1, 2, 3)
	_, err := s.ToSlice()
	require.NoError(t, err)

	_, err = s.Count()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrStreamConsumed)
	assert.True(t, cerrors.IsInvalid(err))
}

func TestLinkedPipelinesShareConsumption(t *testing.T) {
	src := Of(1, 2, 3)
	derived := src.Filter(func(v int) bool { return v > 1 })

	_, err := derived.ToSlice()
	require.NoError(t, err)

	// The source and every stream derived from it share one
	// evaluation permit.
	_, err = src.ToSlice()
	assert.ErrorIs(t, err, cerrors.ErrStreamConsumed)
}

func TestCloseRunsHandlersInReverseOrder(t *testing.T) {
	var order []string
	s := Of(1).
		OnClose(func() error { order = append(order, "first"); return nil }).
		OnClose(func() error { order = append(order, "second"); return nil }).
		OnClose(func() error { order = append(order, "third"); return nil })

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestCloseJoinsHandlerErrors(t *testing.T) {
	errA := errors.New("release a")
	errB := errors.New("release b")
	s := Of(1).
		OnClose(func() error { return errA }).
		OnClose(func() error { return nil }).
		OnClose(func() error { return errB })

	err := s.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestCloseIsIdempotent(t *testing.T) {
	runs := 0
	s := Of(1).OnClose(func() error { runs++; return nil })

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, runs)
}

func TestCloseMarksStreamConsumed(t *testing.T) {
	s := Of(1, 2)
	require.NoError(t, s.Close())

	_, err := s.ToSlice()
	assert.ErrorIs(t, err, cerrors.ErrStreamConsumed)
}

func TestTerminalDoesNotAutoClose(t *testing.T) {
	closed := false
	s := Of(1, 2).OnClose(func() error { closed = true; return nil })

	_, err := s.ToSlice()
	require.NoError(t, err)
	assert.False(t, closed, "terminals must not invoke close handlers")

	require.NoError(t, s.Close())
	assert.True(t, closed)
}

func TestConcat(t *testing.T) {
	got, err := Concat(Of(1, 2), Of(3, 4)).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestConcatClosesBothInputs(t *testing.T) {
	var order []string
	a := Of(1).OnClose(func() error { order = append(order, "a"); return nil })
	b := Of(2).OnClose(func() error { order = append(order, "b"); return nil })

	c := Concat(a, b)
	got, err := c.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestConcatWithConsumedInputFails(t *testing.T) {
	a := Of(1, 2)
	_, err := a.ToSlice()
	require.NoError(t, err)

	_, err = Concat(a, Of(3)).ToSlice()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrStreamConsumed)
}

func TestConcatInheritsParallelMode(t *testing.T) {
	assert.False(t, Concat(Of(1), Of(2)).IsParallel())
	assert.True(t, Concat(Of(1).Parallel(), Of(2)).IsParallel())
}

func TestParallelSequentialToggle(t *testing.T) {
	s := Of(1, 2, 3)
	assert.False(t, s.IsParallel())
	assert.True(t, s.Parallel().IsParallel())
	assert.False(t, s.Sequential().IsParallel())
}

func TestWithParallelismRejectsNonPositive(t *testing.T) {
	s := Of(1).WithParallelism(4)
	assert.Equal(t, 4, s.st.parallelism)

	s.WithParallelism(0)
	assert.Equal(t, 4, s.st.parallelism, "non-positive parallelism is ignored")

	s.WithParallelism(-3)
	assert.Equal(t, 4, s.st.parallelism)
}

func TestWithContextCancelledBeforeTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Of(1, 2, 3).WithContext(ctx).ToSlice()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, cerrors.IsTransient(err))
}

func TestIterator(t *testing.T) {
	var got []int
	s := Of(1, 2, 3, 4)
	for v := range s.Iterator() {
		got = append(got, v)
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestIteratorEarlyBreak(t *testing.T) {
	var got []int
	s := RangeStream(0, 100)
	for v := range s.Iterator() {
		got = append(got, int(v))
		if len(got) == 3 {
			break
		}
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestIteratorSurfacesErrors(t *testing.T) {
	boom := errors.New("boom")
	src := Of(1, 2, 3)
	s := MapErr(src, func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})

	var got []int
	for v := range s.Iterator() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1}, got)
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), boom)
}

func TestIteratorOnConsumedStream(t *testing.T) {
	s := Of(1)
	_, err := s.ToSlice()
	require.NoError(t, err)

	count := 0
	for range s.Iterator() {
		count++
	}
	assert.Zero(t, count)
	assert.ErrorIs(t, s.Err(), cerrors.ErrStreamConsumed)
}

func TestFromSpliteratorRejectsNil(t *testing.T) {
	assert.Panics(t, func() { FromSpliterator[int](nil) })
}

func TestOnCloseRejectsNil(t *testing.T) {
	assert.Panics(t, func() { Of(1).OnClose(nil) })
}

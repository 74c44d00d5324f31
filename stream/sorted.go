package stream

import (
	"cmp"
	"math"
	"slices"

	"github.com/c360/streamkit/spliterator"
)

// SortedNatural returns a stream sorted by the natural order of T. The
// stage is elided when the pipeline already carries natural-sort order,
// such as a range source or a previous SortedNatural.
func SortedNatural[T cmp.Ordered](s *Stream[T]) *Stream[T] {
	if s.p.flags().has(flagSorted) {
		return s
	}
	return sortedStage(s, cmp.Compare[T], flagSorted|flagOrdered, 0)
}

// Sorted returns a stream sorted by compare. A comparator sort cannot
// be proven equal to an earlier one, so it always buffers and clears
// the natural-sort flag.
func (s *Stream[T]) Sorted(compare func(a, b T) int) *Stream[T] {
	if compare == nil {
		panic("stream: nil comparator")
	}
	return sortedStage(s, compare, flagOrdered, flagSorted)
}

func sortedStage[T any](s *Stream[T], compare func(a, b T) int, set, clear pipeFlags) *Stream[T] {
	return fromPipe(s.st, newStateful[T](s.p, set, clear,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &sortedSink[T]{down: down, compare: compare}
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			data := flatten(materializeNode(ec, up))
			slices.SortFunc(data, compare)
			return spliterator.OfSlice(data)
		}))
}

// sortedSink buffers the whole run, sorts at End, and flushes
// downstream inside its own Begin/End frame sized to the exact count.
// A downstream cancellation poll during the run switches the flush to
// the cancel-aware loop, since a short-circuiting stage below may want
// only a prefix of the sorted order.
type sortedSink[T any] struct {
	down    Sink[T]
	compare func(a, b T) int
	buf     []T
	polled  bool
}

func (k *sortedSink[T]) Begin(size int64) {
	if size > 0 && size < math.MaxInt32 {
		k.buf = make([]T, 0, size)
	}
}

func (k *sortedSink[T]) Accept(v T) { k.buf = append(k.buf, v) }

func (k *sortedSink[T]) Cancelled() bool {
	k.polled = true
	return false
}

func (k *sortedSink[T]) End() {
	slices.SortFunc(k.buf, k.compare)
	k.down.Begin(int64(len(k.buf)))
	if k.polled {
		for _, v := range k.buf {
			if k.down.Cancelled() {
				break
			}
			k.down.Accept(v)
		}
	} else {
		for _, v := range k.buf {
			k.down.Accept(v)
		}
	}
	k.down.End()
	k.buf = nil
}

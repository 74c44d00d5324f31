package stream

import (
	"math"

	"github.com/c360/streamkit/spliterator"
)

// Limit returns a stream truncated to at most n elements. The pipeline
// becomes short-circuiting, so infinite sources turn finite.
func (s *Stream[T]) Limit(n int64) *Stream[T] {
	if n < 0 {
		panic("stream: negative limit")
	}
	return sliceStage(s, 0, n, flagShortCircuit)
}

// Skip returns a stream discarding the first n elements in encounter
// order. Skip(0) returns the receiver.
func (s *Stream[T]) Skip(n int64) *Stream[T] {
	if n < 0 {
		panic("stream: negative skip")
	}
	if n == 0 {
		return s
	}
	return sliceStage(s, n, -1, 0)
}

// sliceStage picks the parallel strategy by what the upstream offers:
// an exactly splittable source gets an index window over the stage
// spliterator, an unordered one gets the shared-permit window, and an
// ordered source of unknown split sizes is materialized first so the
// window slices stable positions.
func sliceStage[T any](s *Stream[T], skip, limit int64, set pipeFlags) *Stream[T] {
	return fromPipe(s.st, newStateful[T](s.p, set, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return newSliceSink(down, skip, limit)
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			src := newPipelineSpliterator(up.source(ec), true, ec.spinedChunk)
			switch {
			case src.Characteristics().Has(spliterator.Sized | spliterator.Subsized):
				return spliterator.Window(src, skip, limit)
			case !up.flags().has(flagOrdered):
				return spliterator.UnorderedWindow(src, skip, limit)
			default:
				n := materializeNode(ec, up)
				return spliterator.Window(n.spliterator(), skip, limit)
			}
		}))
}

type sliceSink[T any] struct {
	down      Sink[T]
	skip      int64
	remaining int64
}

func newSliceSink[T any](down Sink[T], skip, limit int64) *sliceSink[T] {
	r := int64(math.MaxInt64)
	if limit >= 0 {
		r = limit
	}
	return &sliceSink[T]{down: down, skip: skip, remaining: r}
}

func (k *sliceSink[T]) Begin(size int64) {
	if size < 0 {
		k.down.Begin(-1)
		return
	}
	size -= k.skip
	if size < 0 {
		size = 0
	}
	if size > k.remaining {
		size = k.remaining
	}
	k.down.Begin(size)
}

func (k *sliceSink[T]) Accept(v T) {
	if k.skip > 0 {
		k.skip--
		return
	}
	if k.remaining > 0 {
		k.remaining--
		k.down.Accept(v)
	}
}

func (k *sliceSink[T]) End() { k.down.End() }

func (k *sliceSink[T]) Cancelled() bool {
	return k.remaining <= 0 || k.down.Cancelled()
}

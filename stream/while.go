package stream

import "github.com/c360/streamkit/spliterator"

// TakeWhile returns a stream of the longest prefix whose elements all
// match pred; traversal stops at the first failure. The pipeline
// becomes short-circuiting. Parallel evaluation materializes the
// upstream and scans the prefix in encounter order, so pair TakeWhile
// on an infinite source with sequential mode.
func (s *Stream[T]) TakeWhile(pred func(T) bool) *Stream[T] {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return fromPipe(s.st, newStateful[T](s.p, flagShortCircuit, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &takeWhileSink[T]{chainedSink: chainedSink[T]{down: down}, pred: pred}
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			data := flatten(materializeNode(ec, up))
			end := len(data)
			for i, v := range data {
				if !pred(v) {
					end = i
					break
				}
			}
			return spliterator.OfSlice(data[:end])
		}))
}

type takeWhileSink[T any] struct {
	chainedSink[T]
	pred func(T) bool
	take bool
}

func (k *takeWhileSink[T]) Begin(int64) {
	k.take = true
	k.down.Begin(-1)
}

func (k *takeWhileSink[T]) Accept(v T) {
	if k.take {
		if k.take = k.pred(v); k.take {
			k.down.Accept(v)
		}
	}
}

func (k *takeWhileSink[T]) Cancelled() bool {
	return !k.take || k.down.Cancelled()
}

// DropWhile returns a stream without the longest prefix whose elements
// all match pred; the first failing element and everything after it
// flow through unchecked. Parallel evaluation materializes like
// TakeWhile.
func (s *Stream[T]) DropWhile(pred func(T) bool) *Stream[T] {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return fromPipe(s.st, newStateful[T](s.p, 0, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &dropWhileSink[T]{chainedSink: chainedSink[T]{down: down}, pred: pred}
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			data := flatten(materializeNode(ec, up))
			start := len(data)
			for i, v := range data {
				if !pred(v) {
					start = i
					break
				}
			}
			return spliterator.OfSlice(data[start:])
		}))
}

type dropWhileSink[T any] struct {
	chainedSink[T]
	pred     func(T) bool
	dropping bool
}

func (k *dropWhileSink[T]) Begin(int64) {
	k.dropping = true
	k.down.Begin(-1)
}

func (k *dropWhileSink[T]) Accept(v T) {
	if k.dropping {
		if k.pred(v) {
			return
		}
		k.dropping = false
	}
	k.down.Accept(v)
}

package stream

import "github.com/c360/streamkit/spliterator"

// Distinct returns a stream with duplicate elements removed, keeping
// the first occurrence in encounter order. The stage is elided when the
// pipeline already carries distinctness. Removing elements preserves
// sortedness, so only the size flag is cleared.
//
// In parallel an unordered pipeline deduplicates concurrently through a
// shared seen-set; an ordered pipeline materializes the upstream first
// so first-occurrence order survives the leaf merge.
func Distinct[T comparable](s *Stream[T]) *Stream[T] {
	if s.p.flags().has(flagDistinct) {
		return s
	}
	return fromPipe(s.st, newStateful[T](s.p, flagDistinct, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &distinctSink[T]{chainedSink: chainedSink[T]{down: down}}
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			if up.flags().has(flagOrdered) {
				return orderedDedup(ec, up, func(v T) T { return v })
			}
			return spliterator.DistinctSpliterator(newPipelineSpliterator(up.source(ec), true, ec.spinedChunk))
		}))
}

type distinctSink[T comparable] struct {
	chainedSink[T]
	seen map[T]struct{}
}

func (k *distinctSink[T]) Begin(int64) {
	k.seen = make(map[T]struct{})
	k.down.Begin(-1)
}

func (k *distinctSink[T]) Accept(v T) {
	if _, dup := k.seen[v]; !dup {
		k.seen[v] = struct{}{}
		k.down.Accept(v)
	}
}

func (k *distinctSink[T]) End() {
	k.seen = nil
	k.down.End()
}

// DistinctBy returns a stream deduplicated by key, keeping the first
// element carrying each key in encounter order. No distinctness flag is
// set: elements equal by key may still differ as values. Parallel
// evaluation materializes the upstream on both ordered and unordered
// pipelines, since the shared-set strategy cannot compare by key alone.
func DistinctBy[T any, K comparable](s *Stream[T], key func(T) K) *Stream[T] {
	if key == nil {
		panic("stream: nil key function")
	}
	return fromPipe(s.st, newStateful[T](s.p, 0, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &distinctBySink[T, K]{chainedSink: chainedSink[T]{down: down}, key: key}
		},
		func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T] {
			return orderedDedup(ec, up, key)
		}))
}

type distinctBySink[T any, K comparable] struct {
	chainedSink[T]
	key  func(T) K
	seen map[K]struct{}
}

func (k *distinctBySink[T, K]) Begin(int64) {
	k.seen = make(map[K]struct{})
	k.down.Begin(-1)
}

func (k *distinctBySink[T, K]) Accept(v T) {
	id := k.key(v)
	if _, dup := k.seen[id]; !dup {
		k.seen[id] = struct{}{}
		k.down.Accept(v)
	}
}

func (k *distinctBySink[T, K]) End() {
	k.seen = nil
	k.down.End()
}

// orderedDedup materializes the upstream and keeps the first element
// per key in encounter order.
func orderedDedup[T any, K comparable](ec *evalContext, up pipe[T], key func(T) K) spliterator.Spliterator[T] {
	n := materializeNode(ec, up)
	seen := make(map[K]struct{})
	out := make([]T, 0, n.count())
	n.forEach(func(v T) {
		id := key(v)
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, v)
		}
	})
	return spliterator.OfSlice(out)
}

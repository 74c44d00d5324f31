package spliterator

import (
	"iter"
	"math"
)

// OfSlice returns a spliterator over the elements of data. The slice is
// not copied; callers must not mutate it during traversal.
func OfSlice[T any](data []T) Spliterator[T] {
	return &arraySpliterator[T]{data: data, fence: len(data)}
}

// Of returns a spliterator over the given elements.
func Of[T any](values ...T) Spliterator[T] {
	return OfSlice(values)
}

// Empty returns a spliterator over no elements.
func Empty[T any]() Spliterator[T] {
	return &arraySpliterator[T]{}
}

type arraySpliterator[T any] struct {
	data  []T
	index int
	fence int
}

func (a *arraySpliterator[T]) TryAdvance(action func(T)) bool {
	if a.index < 0 || a.index >= a.fence {
		return false
	}
	i := a.index
	a.index++
	action(a.data[i])
	return true
}

func (a *arraySpliterator[T]) ForEachRemaining(action func(T)) {
	i, hi := a.index, a.fence
	a.index = hi
	for ; i < hi; i++ {
		action(a.data[i])
	}
}

func (a *arraySpliterator[T]) TrySplit() Spliterator[T] {
	lo, mid := a.index, (a.index+a.fence)>>1
	if lo >= mid {
		return nil
	}
	left := &arraySpliterator[T]{data: a.data, index: lo, fence: mid}
	a.index = mid
	return left
}

func (a *arraySpliterator[T]) EstimateSize() int64 {
	return int64(a.fence - a.index)
}

func (a *arraySpliterator[T]) Characteristics() Characteristics {
	return Ordered | Sized | Subsized | Immutable
}

// Range returns a spliterator over the int64 values [from, to) in
// ascending order. An empty range yields no elements.
func Range(from, to int64) Spliterator[int64] {
	count := to - from
	if count < 0 {
		count = 0
	}
	return &rangeSpliterator{from: from, count: count}
}

// RangeClosed returns a spliterator over [from, to] inclusive.
func RangeClosed(from, to int64) Spliterator[int64] {
	if to < from {
		return Range(0, 0)
	}
	return &rangeSpliterator{from: from, count: to - from + 1}
}

type rangeSpliterator struct {
	from  int64
	count int64
}

func (r *rangeSpliterator) TryAdvance(action func(int64)) bool {
	if r.count <= 0 {
		return false
	}
	v := r.from
	r.from++
	r.count--
	action(v)
	return true
}

func (r *rangeSpliterator) ForEachRemaining(action func(int64)) {
	v, n := r.from, r.count
	r.from += n
	r.count = 0
	for ; n > 0; n-- {
		action(v)
		v++
	}
}

func (r *rangeSpliterator) TrySplit() Spliterator[int64] {
	half := r.count >> 1
	if half == 0 {
		return nil
	}
	left := &rangeSpliterator{from: r.from, count: half}
	r.from += half
	r.count -= half
	return left
}

func (r *rangeSpliterator) EstimateSize() int64 {
	return r.count
}

func (r *rangeSpliterator) Characteristics() Characteristics {
	return Ordered | Sized | Subsized | Immutable | Distinct | Sorted | Nonnull
}

// Comparator reports natural int64 ordering.
func (r *rangeSpliterator) Comparator() func(a, b int64) int {
	return nil
}

// Generate returns an infinite spliterator producing values from
// supplier. The size estimate starts at math.MaxInt64 and halves on
// every split, so parallel decomposition terminates; once the estimate
// reaches zero the spliterator refuses further splits but still
// produces elements. Traversal only ends through cancellation by a
// short-circuiting consumer.
func Generate[T any](supplier func() T) Spliterator[T] {
	if supplier == nil {
		panic("spliterator: nil supplier")
	}
	return &supplyingSpliterator[T]{estimate: math.MaxInt64, supplier: supplier}
}

type supplyingSpliterator[T any] struct {
	estimate int64
	supplier func() T
}

func (s *supplyingSpliterator[T]) TryAdvance(action func(T)) bool {
	action(s.supplier())
	return true
}

func (s *supplyingSpliterator[T]) ForEachRemaining(action func(T)) {
	for {
		action(s.supplier())
	}
}

func (s *supplyingSpliterator[T]) TrySplit() Spliterator[T] {
	if s.estimate == 0 {
		return nil
	}
	s.estimate >>= 1
	return &supplyingSpliterator[T]{estimate: s.estimate, supplier: s.supplier}
}

func (s *supplyingSpliterator[T]) EstimateSize() int64 {
	return s.estimate
}

func (s *supplyingSpliterator[T]) Characteristics() Characteristics {
	return Immutable
}

// Iterate returns an infinite ordered spliterator over seed,
// next(seed), next(next(seed)), ... The next function is applied
// lazily, once per produced element.
func Iterate[T any](seed T, next func(T) T) Spliterator[T] {
	if next == nil {
		panic("spliterator: nil next function")
	}
	return &iterateSpliterator[T]{prev: seed, next: next}
}

type iterateSpliterator[T any] struct {
	prev    T
	next    func(T) T
	started bool
}

func (it *iterateSpliterator[T]) TryAdvance(action func(T)) bool {
	var v T
	if it.started {
		v = it.next(it.prev)
	} else {
		v = it.prev
		it.started = true
	}
	it.prev = v
	action(v)
	return true
}

func (it *iterateSpliterator[T]) ForEachRemaining(action func(T)) {
	for it.TryAdvance(action) {
	}
}

func (it *iterateSpliterator[T]) TrySplit() Spliterator[T] {
	// The sequence is inherently sequential: each element depends on the
	// previous one.
	return nil
}

func (it *iterateSpliterator[T]) EstimateSize() int64 {
	return math.MaxInt64
}

func (it *iterateSpliterator[T]) Characteristics() Characteristics {
	return Ordered | Immutable
}

// FromSeq adapts a Go iterator to a spliterator. The sequence is pulled
// lazily; when it is exhausted the underlying coroutine is stopped.
func FromSeq[T any](seq iter.Seq[T]) Spliterator[T] {
	if seq == nil {
		panic("spliterator: nil sequence")
	}
	return &seqSpliterator[T]{seq: seq}
}

type seqSpliterator[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (s *seqSpliterator[T]) TryAdvance(action func(T)) bool {
	if s.done {
		return false
	}
	if s.next == nil {
		s.next, s.stop = iter.Pull(s.seq)
	}
	v, ok := s.next()
	if !ok {
		s.done = true
		s.stop()
		return false
	}
	action(v)
	return true
}

func (s *seqSpliterator[T]) ForEachRemaining(action func(T)) {
	if s.done {
		return
	}
	if s.next == nil {
		// Untouched: range directly without the pull adapter.
		s.done = true
		for v := range s.seq {
			action(v)
		}
		return
	}
	for s.TryAdvance(action) {
	}
}

func (s *seqSpliterator[T]) TrySplit() Spliterator[T] {
	return nil
}

func (s *seqSpliterator[T]) EstimateSize() int64 {
	if s.done {
		return 0
	}
	return math.MaxInt64
}

func (s *seqSpliterator[T]) Characteristics() Characteristics {
	return Ordered
}

// Seq adapts a spliterator to a Go iterator for use with range.
func Seq[T any](s Spliterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		stopped := false
		for !stopped && s.TryAdvance(func(v T) {
			if !yield(v) {
				stopped = true
			}
		}) {
		}
	}
}

// FromChan returns a spliterator draining ch until it is closed.
// Splits share the channel: receives are disjoint by construction, so
// siblings may be traversed concurrently. The size estimate halves on
// every split and bounds further splitting, as with Generate.
func FromChan[T any](ch <-chan T) Spliterator[T] {
	if ch == nil {
		panic("spliterator: nil channel")
	}
	return &chanSpliterator[T]{ch: ch, estimate: math.MaxInt64}
}

type chanSpliterator[T any] struct {
	ch       <-chan T
	estimate int64
}

func (c *chanSpliterator[T]) TryAdvance(action func(T)) bool {
	v, ok := <-c.ch
	if !ok {
		return false
	}
	action(v)
	return true
}

func (c *chanSpliterator[T]) ForEachRemaining(action func(T)) {
	for v := range c.ch {
		action(v)
	}
}

func (c *chanSpliterator[T]) TrySplit() Spliterator[T] {
	if c.estimate == 0 {
		return nil
	}
	c.estimate >>= 1
	return &chanSpliterator[T]{ch: c.ch, estimate: c.estimate}
}

func (c *chanSpliterator[T]) EstimateSize() int64 {
	return c.estimate
}

func (c *chanSpliterator[T]) Characteristics() Characteristics {
	return Concurrent
}

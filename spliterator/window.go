package spliterator

import "math"

// Window restricts s to the absolute element window [skip, skip+limit)
// in encounter order. A negative limit means unbounded: only the first
// skip elements are discarded. Window preserves encounter order and is
// the order-preserving decomposition for limit/skip over Sized|Subsized
// sources: splitting classifies each child of the underlying source as
// entirely before, inside, spanning, or beyond the window using absolute
// positions, without traversing discarded prefixes eagerly.
func Window[T any](s Spliterator[T], skip, limit int64) Spliterator[T] {
	if skip < 0 {
		panic("spliterator: negative skip")
	}
	hi := int64(math.MaxInt64)
	if limit >= 0 {
		hi = skip + limit
		if hi < 0 { // overflow
			hi = math.MaxInt64
		}
	}
	bound := s.EstimateSize()
	if hi < bound {
		bound = hi
	}
	return &windowSpliterator[T]{s: s, lo: skip, hi: hi, index: 0, bound: bound}
}

// windowSpliterator tracks absolute positions: index is the position of
// the next element the underlying spliterator will produce, bound is one
// past the last position it can produce, and [lo, hi) is the window.
type windowSpliterator[T any] struct {
	s     Spliterator[T]
	lo    int64
	hi    int64
	index int64
	bound int64
}

func (w *windowSpliterator[T]) TrySplit() Spliterator[T] {
	if w.lo >= w.bound || w.index >= w.bound {
		return nil
	}
	// Split the underlying source until a child lands usefully relative
	// to the window.
	for {
		left := w.s.TrySplit()
		if left == nil {
			return nil
		}
		leftBoundUnlimited := w.index + left.EstimateSize()
		leftBound := leftBoundUnlimited
		if w.hi < leftBound {
			leftBound = w.hi
		}
		switch {
		case w.lo >= leftBound:
			// Child is entirely before the window: drop it and account
			// for its elements.
			w.index = leftBound
		case leftBound >= w.hi:
			// Child covers the whole remaining window: descend into it.
			w.s = left
			w.bound = leftBound
		case w.index >= w.lo && leftBoundUnlimited <= w.hi:
			// Child is entirely inside the window: hand it out bare.
			w.index = leftBound
			return left
		default:
			// Child straddles a window edge: wrap it in its own window.
			child := &windowSpliterator[T]{s: left, lo: w.lo, hi: w.hi, index: w.index, bound: leftBound}
			w.index = leftBound
			return child
		}
	}
}

func (w *windowSpliterator[T]) TryAdvance(action func(T)) bool {
	if w.lo >= w.bound {
		return false
	}
	for w.lo > w.index {
		w.s.TryAdvance(func(T) {})
		w.index++
	}
	if w.index >= w.bound {
		return false
	}
	w.index++
	return w.s.TryAdvance(action)
}

func (w *windowSpliterator[T]) ForEachRemaining(action func(T)) {
	if w.lo >= w.bound || w.index >= w.bound {
		return
	}
	if w.index >= w.lo && w.index+w.s.EstimateSize() <= w.hi {
		// Everything remaining is inside the window.
		w.s.ForEachRemaining(action)
		w.index = w.bound
		return
	}
	for w.lo > w.index {
		w.s.TryAdvance(func(T) {})
		w.index++
	}
	for ; w.index < w.bound; w.index++ {
		if !w.s.TryAdvance(action) {
			break
		}
	}
}

func (w *windowSpliterator[T]) EstimateSize() int64 {
	if w.lo >= w.bound {
		return 0
	}
	from := w.lo
	if w.index > from {
		from = w.index
	}
	return w.bound - from
}

func (w *windowSpliterator[T]) Characteristics() Characteristics {
	return w.s.Characteristics()
}

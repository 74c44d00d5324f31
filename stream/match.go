package stream

import (
	"math"
	"sync/atomic"
)

// matchKind fixes a quantified predicate's stop condition and the
// result it short-circuits to.
type matchKind struct {
	stopOnMatch bool
	stopValue   bool
}

var (
	matchAny  = matchKind{stopOnMatch: true, stopValue: true}
	matchAll  = matchKind{stopOnMatch: false, stopValue: false}
	matchNone = matchKind{stopOnMatch: true, stopValue: false}
)

// AnyMatch reports whether any element matches pred. It stops at the
// first match; an empty stream reports false.
func (s *Stream[T]) AnyMatch(pred func(T) bool) (bool, error) {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return s.matchTerminal("AnyMatch", pred, matchAny)
}

// AllMatch reports whether every element matches pred. It stops at the
// first failure; an empty stream reports true.
func (s *Stream[T]) AllMatch(pred func(T) bool) (bool, error) {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return s.matchTerminal("AllMatch", pred, matchAll)
}

// NoneMatch reports whether no element matches pred. It stops at the
// first match; an empty stream reports true.
func (s *Stream[T]) NoneMatch(pred func(T) bool) (bool, error) {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return s.matchTerminal("NoneMatch", pred, matchNone)
}

func (s *Stream[T]) matchTerminal(op string, pred func(T) bool, kind matchKind) (result bool, err error) {
	ec, err := claim(s, op, flagShortCircuit)
	if err != nil {
		return false, err
	}
	defer ec.finish(&err)
	if ec.parallel {
		var sinks []*matchSink[T]
		if _, err = s.p.parallelInto(ec, func(int) Sink[T] {
			k := &matchSink[T]{ec: ec, pred: pred, kind: kind}
			sinks = append(sinks, k)
			return k
		}); err != nil {
			return false, err
		}
		for _, k := range sinks {
			if k.stopped {
				return kind.stopValue, nil
			}
		}
		return !kind.stopValue, nil
	}
	k := &matchSink[T]{ec: ec, pred: pred, kind: kind}
	s.p.push(ec, k)
	if k.stopped {
		return kind.stopValue, nil
	}
	return !kind.stopValue, nil
}

// matchSink latches on the element that resolves the quantifier. Any
// leaf resolving it determines the whole result, so resolution
// quiesces every other leaf.
type matchSink[T any] struct {
	baseSink
	ec      *evalContext
	pred    func(T) bool
	kind    matchKind
	stopped bool
}

func (k *matchSink[T]) Accept(v T) {
	if !k.stopped && k.pred(v) == k.kind.stopOnMatch {
		k.stopped = true
		k.ec.quiesce.Store(true)
	}
}

func (k *matchSink[T]) Cancelled() bool { return k.stopped }

// FindFirst returns the first element in encounter order; ok is false
// for an empty stream. A parallel leaf that finds an element only
// cancels leaves at later encounter positions, because an earlier leaf
// may still produce an earlier result; leaf results merge in encounter
// order after the join.
func (s *Stream[T]) FindFirst() (T, bool, error) {
	return findTerminal(s, "FindFirst", false)
}

// FindAny returns some element; ok is false for an empty stream. The
// first hit quiesces every other leaf, so parallel pipelines resolve
// without draining.
func (s *Stream[T]) FindAny() (T, bool, error) {
	return findTerminal(s, "FindAny", true)
}

func findTerminal[T any](s *Stream[T], op string, anyHit bool) (result T, ok bool, err error) {
	ec, err := claim(s, op, flagShortCircuit)
	if err != nil {
		return result, false, err
	}
	defer ec.finish(&err)
	if !ec.parallel {
		k := &findSink[T]{}
		s.p.push(ec, k)
		return k.value, k.has, nil
	}
	best := &atomic.Int64{}
	best.Store(math.MaxInt64)
	var sinks []*findSink[T]
	if _, err = s.p.parallelInto(ec, func(leaf int) Sink[T] {
		k := &findSink[T]{ec: ec, anyHit: anyHit, leaf: int64(leaf), best: best}
		sinks = append(sinks, k)
		return k
	}); err != nil {
		return result, false, err
	}
	for _, k := range sinks {
		if k.has {
			return k.value, true, nil
		}
	}
	return result, false, nil
}

// findSink keeps the first element a leaf sees. In any-hit mode a hit
// quiesces the evaluation; in first-hit mode it lowers the shared best
// leaf index, cancelling only leaves behind it in encounter order.
type findSink[T any] struct {
	baseSink
	value T
	has   bool

	ec     *evalContext
	anyHit bool
	leaf   int64
	best   *atomic.Int64
}

func (k *findSink[T]) Accept(v T) {
	if k.has {
		return
	}
	k.value, k.has = v, true
	if k.ec == nil {
		return
	}
	if k.anyHit {
		k.ec.quiesce.Store(true)
		return
	}
	for {
		cur := k.best.Load()
		if k.leaf >= cur || k.best.CompareAndSwap(cur, k.leaf) {
			return
		}
	}
}

func (k *findSink[T]) Cancelled() bool {
	if k.has {
		return true
	}
	return k.best != nil && k.best.Load() < k.leaf
}

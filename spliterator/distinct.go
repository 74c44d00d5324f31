package spliterator

import "sync"

// DistinctSpliterator filters s so each equal value is produced once.
// Splits share one concurrent seen-set, so the family as a whole is
// duplicate-free even when siblings are traversed by different
// goroutines. Which duplicate wins is unspecified; encounter order is
// not preserved.
func DistinctSpliterator[T comparable](s Spliterator[T]) Spliterator[T] {
	return &distinctSpliterator[T]{s: s, seen: &sync.Map{}}
}

type distinctSpliterator[T comparable] struct {
	s    Spliterator[T]
	seen *sync.Map
}

func (d *distinctSpliterator[T]) TryAdvance(action func(T)) bool {
	var slot T
	for d.s.TryAdvance(func(v T) { slot = v }) {
		if _, dup := d.seen.LoadOrStore(slot, struct{}{}); !dup {
			action(slot)
			return true
		}
	}
	return false
}

func (d *distinctSpliterator[T]) ForEachRemaining(action func(T)) {
	d.s.ForEachRemaining(func(v T) {
		if _, dup := d.seen.LoadOrStore(v, struct{}{}); !dup {
			action(v)
		}
	})
}

func (d *distinctSpliterator[T]) TrySplit() Spliterator[T] {
	split := d.s.TrySplit()
	if split == nil {
		return nil
	}
	return &distinctSpliterator[T]{s: split, seen: d.seen}
}

func (d *distinctSpliterator[T]) EstimateSize() int64 {
	return d.s.EstimateSize()
}

func (d *distinctSpliterator[T]) Characteristics() Characteristics {
	return d.s.Characteristics().Without(Sized | Subsized | Sorted | Ordered).With(Distinct)
}

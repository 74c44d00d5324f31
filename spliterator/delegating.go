package spliterator

// Delegating defers obtaining a spliterator until it is first needed,
// then delegates every operation to it. This keeps one-shot sources
// (consumers, network reads) unbound until evaluation actually begins,
// so building a pipeline has no side effects on the source.
func Delegating[T any](supplier func() Spliterator[T]) Spliterator[T] {
	if supplier == nil {
		panic("spliterator: nil supplier")
	}
	return &delegatingSpliterator[T]{supplier: supplier}
}

type delegatingSpliterator[T any] struct {
	supplier func() Spliterator[T]
	s        Spliterator[T]
}

// get memoizes the supplied spliterator. Not safe for concurrent use;
// the spliterator contract is single-owner until split.
func (d *delegatingSpliterator[T]) get() Spliterator[T] {
	if d.s == nil {
		d.s = d.supplier()
	}
	return d.s
}

func (d *delegatingSpliterator[T]) TryAdvance(action func(T)) bool {
	return d.get().TryAdvance(action)
}

func (d *delegatingSpliterator[T]) ForEachRemaining(action func(T)) {
	d.get().ForEachRemaining(action)
}

func (d *delegatingSpliterator[T]) TrySplit() Spliterator[T] {
	return d.get().TrySplit()
}

func (d *delegatingSpliterator[T]) EstimateSize() int64 {
	return d.get().EstimateSize()
}

func (d *delegatingSpliterator[T]) Characteristics() Characteristics {
	return d.get().Characteristics()
}

package spliterator

import "math"

// Concat returns a spliterator over all elements of a followed by all
// elements of b. The first split hands a off wholesale and the
// receiver keeps b, so parallel decomposition recovers the inputs
// before splitting within them. Distinctness and sortedness do not
// survive concatenation; exact sizing survives unless the combined
// size overflows.
func Concat[T any](a, b Spliterator[T]) Spliterator[T] {
	if a == nil || b == nil {
		panic("spliterator: nil spliterator")
	}
	return &concatSpliterator[T]{
		a:           a,
		b:           b,
		beforeSplit: true,
		unsized:     a.EstimateSize()+b.EstimateSize() < 0,
	}
}

type concatSpliterator[T any] struct {
	a, b        Spliterator[T]
	beforeSplit bool
	// unsized records size overflow at construction; the exact-size
	// bits are masked for the lifetime of the pair.
	unsized bool
}

func (c *concatSpliterator[T]) TryAdvance(action func(T)) bool {
	if c.beforeSplit {
		if c.a.TryAdvance(action) {
			return true
		}
		c.beforeSplit = false
	}
	return c.b.TryAdvance(action)
}

func (c *concatSpliterator[T]) ForEachRemaining(action func(T)) {
	if c.beforeSplit {
		c.a.ForEachRemaining(action)
		c.beforeSplit = false
	}
	c.b.ForEachRemaining(action)
}

func (c *concatSpliterator[T]) TrySplit() Spliterator[T] {
	if c.beforeSplit {
		c.beforeSplit = false
		return c.a
	}
	return c.b.TrySplit()
}

func (c *concatSpliterator[T]) EstimateSize() int64 {
	if c.beforeSplit {
		size := c.a.EstimateSize() + c.b.EstimateSize()
		if size < 0 {
			return math.MaxInt64
		}
		return size
	}
	return c.b.EstimateSize()
}

func (c *concatSpliterator[T]) Characteristics() Characteristics {
	if !c.beforeSplit {
		return c.b.Characteristics()
	}
	mask := Distinct | Sorted
	if c.unsized {
		mask |= Sized | Subsized
	}
	return (c.a.Characteristics() & c.b.Characteristics()).Without(mask)
}

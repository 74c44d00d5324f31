package stream

// Reduce combines the elements with op and reports whether any element
// was present. Parallel evaluation folds each leaf independently and
// merges the leaf results in encounter order, so op must be
// associative.
func (s *Stream[T]) Reduce(op func(T, T) T) (T, bool, error) {
	if op == nil {
		panic("stream: nil reducer")
	}
	return s.reduceTerminal("Reduce", op)
}

// Min returns the smallest element by compare, keeping the first of
// equal elements; ok is false for an empty stream.
func (s *Stream[T]) Min(compare func(a, b T) int) (T, bool, error) {
	if compare == nil {
		panic("stream: nil comparator")
	}
	return s.reduceTerminal("Min", func(a, b T) T {
		if compare(b, a) < 0 {
			return b
		}
		return a
	})
}

// Max returns the largest element by compare, keeping the first of
// equal elements; ok is false for an empty stream.
func (s *Stream[T]) Max(compare func(a, b T) int) (T, bool, error) {
	if compare == nil {
		panic("stream: nil comparator")
	}
	return s.reduceTerminal("Max", func(a, b T) T {
		if compare(b, a) > 0 {
			return b
		}
		return a
	})
}

func (s *Stream[T]) reduceTerminal(op string, fn func(T, T) T) (result T, ok bool, err error) {
	ec, err := claim(s, op, 0)
	if err != nil {
		return result, false, err
	}
	defer ec.finish(&err)
	if ec.parallel {
		var sinks []*reduceSink[T]
		if _, err = s.p.parallelInto(ec, func(int) Sink[T] {
			k := &reduceSink[T]{op: fn}
			sinks = append(sinks, k)
			return k
		}); err != nil {
			return result, false, err
		}
		for _, k := range sinks {
			switch {
			case !k.has:
			case !ok:
				result, ok = k.state, true
			default:
				result = fn(result, k.state)
			}
		}
		return result, ok, nil
	}
	k := &reduceSink[T]{op: fn}
	s.p.push(ec, k)
	return k.state, k.has, nil
}

type reduceSink[T any] struct {
	baseSink
	op    func(T, T) T
	state T
	has   bool
}

func (k *reduceSink[T]) Begin(int64) {
	var zero T
	k.state = zero
	k.has = false
}

func (k *reduceSink[T]) Accept(v T) {
	if !k.has {
		k.state = v
		k.has = true
		return
	}
	k.state = k.op(k.state, v)
}

// ReduceWith combines the elements with op starting from identity.
// identity must be an identity value for op; op must be associative
// for parallel use.
func (s *Stream[T]) ReduceWith(identity T, op func(T, T) T) (T, error) {
	if op == nil {
		panic("stream: nil reducer")
	}
	return foldTerminal(s, "ReduceWith", identity,
		func(acc T, v T) T { return op(acc, v) },
		op)
}

// Fold accumulates the elements into a value of another type:
// accumulate folds one element into the running value, combine merges
// two partial values during parallel leaf joins. Free function: Go
// methods cannot introduce type parameters.
func Fold[T, U any](s *Stream[T], identity U, accumulate func(U, T) U, combine func(U, U) U) (U, error) {
	if accumulate == nil {
		panic("stream: nil accumulator")
	}
	if combine == nil {
		panic("stream: nil combiner")
	}
	return foldTerminal(s, "Fold", identity, accumulate, combine)
}

func foldTerminal[T, U any](s *Stream[T], op string, identity U, accumulate func(U, T) U, combine func(U, U) U) (result U, err error) {
	ec, err := claim(s, op, 0)
	if err != nil {
		return identity, err
	}
	defer ec.finish(&err)
	if ec.parallel {
		var sinks []*foldSink[T, U]
		if _, err = s.p.parallelInto(ec, func(int) Sink[T] {
			k := &foldSink[T, U]{identity: identity, accumulate: accumulate}
			sinks = append(sinks, k)
			return k
		}); err != nil {
			return identity, err
		}
		result = identity
		for _, k := range sinks {
			result = combine(result, k.state)
		}
		return result, nil
	}
	k := &foldSink[T, U]{identity: identity, accumulate: accumulate}
	s.p.push(ec, k)
	return k.state, nil
}

type foldSink[T, U any] struct {
	baseSink
	identity   U
	accumulate func(U, T) U
	state      U
}

func (k *foldSink[T, U]) Begin(int64) { k.state = k.identity }
func (k *foldSink[T, U]) Accept(v T)  { k.state = k.accumulate(k.state, v) }

// Collect performs a mutable reduction: supplier creates a container,
// accumulate folds an element into it, combine merges a second
// container into a first. Sequential evaluation fills one container
// and never calls combine; parallel evaluation fills one per leaf and
// merges them in encounter order.
func Collect[T, R any](s *Stream[T], supplier func() R, accumulate func(R, T), combine func(R, R)) (R, error) {
	if supplier == nil {
		panic("stream: nil supplier")
	}
	if accumulate == nil {
		panic("stream: nil accumulator")
	}
	if combine == nil {
		panic("stream: nil combiner")
	}
	return collectTerminal(s, "Collect", supplier, accumulate, combine)
}

func collectTerminal[T, R any](s *Stream[T], op string, supplier func() R, accumulate func(R, T), combine func(R, R)) (result R, err error) {
	ec, err := claim(s, op, 0)
	if err != nil {
		return result, err
	}
	defer ec.finish(&err)
	if ec.parallel {
		var sinks []*collectSink[T, R]
		if _, err = s.p.parallelInto(ec, func(int) Sink[T] {
			k := &collectSink[T, R]{container: supplier(), accumulate: accumulate}
			sinks = append(sinks, k)
			return k
		}); err != nil {
			return result, err
		}
		result = sinks[0].container
		for _, k := range sinks[1:] {
			combine(result, k.container)
		}
		return result, nil
	}
	k := &collectSink[T, R]{container: supplier(), accumulate: accumulate}
	s.p.push(ec, k)
	return k.container, nil
}

type collectSink[T, R any] struct {
	baseSink
	container  R
	accumulate func(R, T)
}

func (k *collectSink[T, R]) Accept(v T) { k.accumulate(k.container, v) }

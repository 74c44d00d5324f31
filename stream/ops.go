package stream

import "github.com/c360/streamkit/errors"

// Filter returns a stream of the elements matching pred. The element
// count is unknown downstream of a filter.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	if pred == nil {
		panic("stream: nil predicate")
	}
	return fromPipe(s.st, newStateless[T, T](s.p, 0, flagSized,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &filterSink[T]{chainedSink: chainedSink[T]{down: down}, pred: pred}
		}))
}

type filterSink[T any] struct {
	chainedSink[T]
	pred func(T) bool
}

func (k *filterSink[T]) Begin(int64) { k.down.Begin(-1) }

func (k *filterSink[T]) Accept(v T) {
	if k.pred(v) {
		k.down.Accept(v)
	}
}

// Peek returns a stream that invokes fn on each element as it flows
// past. Peek observes whatever elements the evaluation actually pushes;
// a short-circuiting terminal may cut the flow early.
func (s *Stream[T]) Peek(fn func(T)) *Stream[T] {
	if fn == nil {
		panic("stream: nil action")
	}
	return fromPipe(s.st, newStateless[T, T](s.p, 0, 0,
		func(_ *evalContext, down Sink[T]) Sink[T] {
			return &peekSink[T]{chainedSink: chainedSink[T]{down: down}, fn: fn}
		}))
}

type peekSink[T any] struct {
	chainedSink[T]
	fn func(T)
}

func (k *peekSink[T]) Accept(v T) {
	k.fn(v)
	k.down.Accept(v)
}

// Unordered returns a stream with no encounter order constraint,
// allowing order-sensitive operations to pick cheaper strategies. It
// returns the receiver when the pipeline is already unordered.
func (s *Stream[T]) Unordered() *Stream[T] {
	if !s.p.flags().has(flagOrdered) {
		return s
	}
	return fromPipe(s.st, newStateless[T, T](s.p, 0, flagOrdered,
		func(_ *evalContext, down Sink[T]) Sink[T] { return down }))
}

// Map returns a stream of fn applied to each element. Free function:
// Go methods cannot introduce type parameters.
func Map[T, U any](s *Stream[T], fn func(T) U) *Stream[U] {
	if fn == nil {
		panic("stream: nil mapper")
	}
	return fromPipe(s.st, newStateless[T, U](s.p, 0, flagDistinct|flagSorted,
		func(_ *evalContext, down Sink[U]) Sink[T] {
			return &mapSink[T, U]{chainedSink: chainedSink[U]{down: down}, fn: fn}
		}))
}

type mapSink[T, U any] struct {
	chainedSink[U]
	fn func(T) U
}

func (k *mapSink[T, U]) Accept(v T) { k.down.Accept(k.fn(v)) }

// MapErr is Map for fallible mappers. The first error aborts the
// evaluation and surfaces from the terminal operation.
func MapErr[T, U any](s *Stream[T], fn func(T) (U, error)) *Stream[U] {
	if fn == nil {
		panic("stream: nil mapper")
	}
	return fromPipe(s.st, newStateless[T, U](s.p, 0, flagDistinct|flagSorted,
		func(_ *evalContext, down Sink[U]) Sink[T] {
			return &mapErrSink[T, U]{chainedSink: chainedSink[U]{down: down}, fn: fn}
		}))
}

type mapErrSink[T, U any] struct {
	chainedSink[U]
	fn func(T) (U, error)
}

func (k *mapErrSink[T, U]) Accept(v T) {
	u, err := k.fn(v)
	if err != nil {
		errors.Tunnel(errors.Wrap(err, "Stream", "MapErr", "map element"))
	}
	k.down.Accept(u)
}

// FlatMap returns a stream of all elements of the streams fn produces.
// Each substream is evaluated sequentially in encounter position,
// consumed, and closed; a nil substream contributes nothing. When the
// pipeline short-circuits, substream traversal is cut as soon as the
// downstream cancels.
func FlatMap[T, U any](s *Stream[T], fn func(T) *Stream[U]) *Stream[U] {
	if fn == nil {
		panic("stream: nil mapper")
	}
	return fromPipe(s.st, newStateless[T, U](s.p, 0, flagSized|flagDistinct|flagSorted,
		func(ec *evalContext, down Sink[U]) Sink[T] {
			return &flatMapSink[T, U]{
				chainedSink:  chainedSink[U]{down: down},
				fn:           fn,
				shortCircuit: ec.combined.has(flagShortCircuit),
			}
		}))
}

type flatMapSink[T, U any] struct {
	chainedSink[U]
	fn           func(T) *Stream[U]
	shortCircuit bool
}

func (k *flatMapSink[T, U]) Begin(int64) { k.down.Begin(-1) }

func (k *flatMapSink[T, U]) Accept(v T) {
	sub := k.fn(v)
	if sub == nil {
		return
	}
	err := k.drain(sub.Sequential())
	if cerr := sub.Close(); err == nil {
		err = cerr
	}
	errors.Tunnel(err)
}

func (k *flatMapSink[T, U]) drain(sub *Stream[U]) error {
	if !k.shortCircuit {
		return sub.ForEach(k.down.Accept)
	}
	return sub.drainInto("FlatMap", &relaySink[U]{down: k.down})
}

// MapMulti returns a stream of the elements fn yields for each input
// element. It is the push-side counterpart of FlatMap for expansions
// that do not naturally form a stream.
func MapMulti[T, U any](s *Stream[T], fn func(v T, yield func(U))) *Stream[U] {
	if fn == nil {
		panic("stream: nil mapper")
	}
	return fromPipe(s.st, newStateless[T, U](s.p, 0, flagSized|flagDistinct|flagSorted,
		func(_ *evalContext, down Sink[U]) Sink[T] {
			return &mapMultiSink[T, U]{chainedSink: chainedSink[U]{down: down}, fn: fn}
		}))
}

type mapMultiSink[T, U any] struct {
	chainedSink[U]
	fn func(v T, yield func(U))
}

func (k *mapMultiSink[T, U]) Begin(int64) { k.down.Begin(-1) }

func (k *mapMultiSink[T, U]) Accept(v T) { k.fn(v, k.down.Accept) }

// drainInto claims the stream and pushes every element into snk with
// cancellation polling. It backs substream consumption inside an
// already-begun outer run; relaySink absorbs the inner Begin and End
// so the outer framing stays intact.
func (s *Stream[T]) drainInto(op string, snk Sink[T]) (err error) {
	ec, err := claim(s, op, flagShortCircuit)
	if err != nil {
		return err
	}
	defer ec.finish(&err)
	s.p.push(ec, snk)
	return nil
}

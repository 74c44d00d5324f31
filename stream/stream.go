package stream

import (
	"context"
	stderrors "errors"
	"iter"
	"log/slog"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/spliterator"
)

// Stream is a lazy pipeline of operations over elements of type T.
// Building a stream performs no work: intermediate operations link
// stages onto the pipeline, and a terminal operation traverses the
// source exactly once, pushing elements through the fused stage chain.
//
// A stream is one-shot. The first terminal operation claims the
// pipeline; any later terminal fails with errors.ErrStreamConsumed.
// Streams are not safe for concurrent use while being built; parallel
// terminals distribute the traversal internally.
type Stream[T any] struct {
	p       pipe[T]
	st      *pipelineState
	iterErr error
}

func fromPipe[T any](st *pipelineState, p pipe[T]) *Stream[T] {
	return &Stream[T]{p: p, st: st}
}

// FromSpliterator returns a stream over the elements of spl. The
// spliterator's characteristics seed the pipeline's stage flags.
func FromSpliterator[T any](spl spliterator.Spliterator[T]) *Stream[T] {
	if spl == nil {
		panic("stream: nil spliterator")
	}
	st := newPipelineState()
	return fromPipe(st, newHead(st, spl))
}

// FromSupplier returns a stream whose source spliterator is obtained
// from supplier only when a terminal operation runs. c declares the
// characteristics the supplied spliterator will report; declaring them
// up front lets the pipeline plan without binding a one-shot source.
func FromSupplier[T any](supplier func() spliterator.Spliterator[T], c spliterator.Characteristics) *Stream[T] {
	if supplier == nil {
		panic("stream: nil supplier")
	}
	st := newPipelineState()
	return fromPipe(st, newSupplierHead(st, supplier, c))
}

// FromSlice returns an ordered, sized stream over data. The slice is
// not copied; callers must not mutate it before evaluation completes.
func FromSlice[T any](data []T) *Stream[T] {
	return FromSpliterator(spliterator.OfSlice(data))
}

// Of returns an ordered stream over the given values.
func Of[T any](values ...T) *Stream[T] {
	return FromSpliterator(spliterator.Of(values...))
}

// EmptyStream returns a stream of no elements.
func EmptyStream[T any]() *Stream[T] {
	return FromSpliterator(spliterator.Empty[T]())
}

// Generate returns an infinite unordered stream of values from
// supplier. Pair it with Limit or a short-circuiting terminal.
func Generate[T any](supplier func() T) *Stream[T] {
	return FromSpliterator(spliterator.Generate(supplier))
}

// Iterate returns the infinite ordered stream seed, next(seed),
// next(next(seed)), and so on.
func Iterate[T any](seed T, next func(T) T) *Stream[T] {
	return FromSpliterator(spliterator.Iterate(seed, next))
}

// RangeStream returns an ordered stream of the int64 values [from, to).
func RangeStream(from, to int64) *Stream[int64] {
	return FromSpliterator(spliterator.Range(from, to))
}

// RangeClosed returns an ordered stream of the int64 values [from, to].
func RangeClosed(from, to int64) *Stream[int64] {
	return FromSpliterator(spliterator.RangeClosed(from, to))
}

// FromSeq returns an ordered stream over a Go iterator sequence.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	return FromSpliterator(spliterator.FromSeq(seq))
}

// FromChan returns a stream draining ch until it is closed. Receives
// are disjoint across splits, so the stream may run in parallel.
func FromChan[T any](ch <-chan T) *Stream[T] {
	return FromSpliterator(spliterator.FromChan(ch))
}

// Concat returns a stream of all elements of a followed by all
// elements of b. Both inputs are claimed when the result is evaluated
// and closed when the result is closed. The result is parallel if
// either input is.
func Concat[T any](a, b *Stream[T]) *Stream[T] {
	if a == nil || b == nil {
		panic("stream: nil stream")
	}
	ca := flagCharacteristics(a.p.flags())
	cb := flagCharacteristics(b.p.flags())
	c := (ca & cb).Without(spliterator.Distinct | spliterator.Sorted)
	out := FromSupplier(func() spliterator.Spliterator[T] {
		sa, err := a.Spliterator()
		if err != nil {
			errors.Tunnel(err)
		}
		sb, err := b.Spliterator()
		if err != nil {
			errors.Tunnel(err)
		}
		return spliterator.Concat(sa, sb)
	}, c)
	if a.IsParallel() || b.IsParallel() {
		out.Parallel()
	}
	out.OnClose(b.Close)
	out.OnClose(a.Close)
	return out
}

// Parallel marks the pipeline for parallel evaluation. The mode applies
// to the whole pipeline at terminal time; the last call wins.
func (s *Stream[T]) Parallel() *Stream[T] {
	s.st.parallel = true
	return s
}

// Sequential marks the pipeline for sequential evaluation.
func (s *Stream[T]) Sequential() *Stream[T] {
	s.st.parallel = false
	return s
}

// IsParallel reports the evaluation mode the pipeline currently holds.
func (s *Stream[T]) IsParallel() bool { return s.st.parallel }

// WithContext attaches ctx to the evaluation. Parallel leaves stop
// launching once ctx is done, and traversal polls it periodically;
// cancellation surfaces as a Transient-classified error.
func (s *Stream[T]) WithContext(ctx context.Context) *Stream[T] {
	if ctx != nil {
		s.st.ctx = ctx
	}
	return s
}

// WithParallelism caps the goroutines a parallel terminal uses and
// sizes the split tree. Values below one are ignored.
func (s *Stream[T]) WithParallelism(n int) *Stream[T] {
	if n > 0 {
		s.st.parallelism = n
	}
	return s
}

// WithEvaluationConfig applies evaluation tuning from configuration:
// the goroutine cap, the leaf target factor scaling the parallel split
// budget, and the first chunk size of growable result buffers. Zero
// fields keep the current settings.
func (s *Stream[T]) WithEvaluationConfig(cfg config.EvaluationConfig) *Stream[T] {
	if cfg.Parallelism > 0 {
		s.st.parallelism = cfg.Parallelism
	}
	if cfg.LeafTargetFactor > 0 {
		s.st.leafFactor = cfg.LeafTargetFactor
	}
	if cfg.SpinedInitialChunk > 0 {
		s.st.spinedChunk = cfg.SpinedInitialChunk
	}
	return s
}

// WithLogger sets the logger used for evaluation lifecycle events.
func (s *Stream[T]) WithLogger(logger *slog.Logger) *Stream[T] {
	if logger != nil {
		s.st.logger = logger
	}
	return s
}

// WithMetrics sets the metrics collector evaluations report to. A nil
// collector disables recording.
func (s *Stream[T]) WithMetrics(m *metric.Metrics) *Stream[T] {
	s.st.metrics = m
	return s
}

// OnClose registers a handler to run when the stream is closed.
// Handlers run in reverse registration order.
func (s *Stream[T]) OnClose(fn func() error) *Stream[T] {
	if fn == nil {
		panic("stream: nil close handler")
	}
	s.st.closers = append(s.st.closers, fn)
	return s
}

// Close runs the registered close handlers and joins their errors.
// Closing is idempotent and marks the pipeline consumed. Evaluation
// never closes implicitly; callers of resource-backed streams defer
// Close themselves.
func (s *Stream[T]) Close() error {
	if !s.st.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.st.consumed.Store(true)
	var err error
	for i := len(s.st.closers) - 1; i >= 0; i-- {
		err = stderrors.Join(err, s.st.closers[i]())
	}
	s.st.closers = nil
	return err
}

// Err returns the error deferred by an Iterator consumption, if any.
// It is valid after the iteration loop finishes.
func (s *Stream[T]) Err() error { return s.iterErr }

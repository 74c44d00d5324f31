package stream

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/spliterator"
)

// pipelineState is shared by every stage of one pipeline. It carries
// the execution configuration and the one-shot consumption latch.
type pipelineState struct {
	consumed    atomic.Bool
	parallel    bool
	parallelism int
	leafFactor  int
	spinedChunk int
	ctx         context.Context
	logger      *slog.Logger
	metrics     *metric.Metrics
	closers     []func() error
	closed      atomic.Bool
}

func newPipelineState() *pipelineState {
	return &pipelineState{
		parallelism: runtime.GOMAXPROCS(0),
		leafFactor:  defaultLeafFactor,
		ctx:         context.Background(),
		logger:      slog.Default(),
	}
}

// pipe is one stage of a pipeline. Stages form a singly linked chain
// from the terminal back to the head; evaluation either pushes source
// elements through a fused sink chain (push), runs the chain over
// split leaves (parallelInto), or exposes the chain as a pull source
// for a downstream spliterator (source).
type pipe[OUT any] interface {
	push(ec *evalContext, out Sink[OUT]) bool
	parallelInto(ec *evalContext, mk func(leaf int) Sink[OUT]) (int, error)
	source(ec *evalContext) *sourceChain[OUT]
	flags() pipeFlags
	state() *pipelineState
}

// splitHandle is the type-erased split protocol of a source
// spliterator. It carries no element values, so stages of differing
// element types can share one handle; the head's bind closure asserts
// it back to the typed spliterator for traversal.
type splitHandle interface {
	trySplit() splitHandle
	estimateSize() int64
	characteristics() spliterator.Characteristics
}

type typedHandle[S any] struct {
	spl spliterator.Spliterator[S]
}

func (h *typedHandle[S]) trySplit() splitHandle {
	if sp := h.spl.TrySplit(); sp != nil {
		return &typedHandle[S]{spl: sp}
	}
	return nil
}

func (h *typedHandle[S]) estimateSize() int64 { return h.spl.EstimateSize() }

func (h *typedHandle[S]) characteristics() spliterator.Characteristics {
	return h.spl.Characteristics()
}

// boundChain is a source handle fused to a full sink chain, ready to
// traverse. advance pushes one source element and reports whether one
// was pushed; cancelled reflects the chain's short-circuit state.
type boundChain struct {
	begin     func(size int64)
	advance   func() bool
	forEach   func()
	end       func()
	cancelled func() bool
}

// sourceChain describes a pipeline prefix as a splittable source: the
// erased handle, the flags of the run it produces, and a bind that
// fuses any handle split off it to a downstream sink.
type sourceChain[OUT any] struct {
	handle splitHandle
	flg    pipeFlags
	bind   func(h splitHandle, down Sink[OUT]) boundChain
}

func spliteratorChain[T any](spl spliterator.Spliterator[T], flg pipeFlags) *sourceChain[T] {
	return &sourceChain[T]{
		handle: &typedHandle[T]{spl: spl},
		flg:    flg,
		bind: func(h splitHandle, down Sink[T]) boundChain {
			s := h.(*typedHandle[T]).spl
			return boundChain{
				begin:     down.Begin,
				advance:   func() bool { return s.TryAdvance(down.Accept) },
				forEach:   func() { s.ForEachRemaining(down.Accept) },
				end:       down.End,
				cancelled: down.Cancelled,
			}
		},
	}
}

// head is the source stage. A supplier head defers acquiring its
// spliterator until first use.
type head[S any] struct {
	st       *pipelineState
	spl      spliterator.Spliterator[S]
	supplier func() spliterator.Spliterator[S]
	flg      pipeFlags
}

func newHead[S any](st *pipelineState, spl spliterator.Spliterator[S]) *head[S] {
	flg := sourceFlags(spl.Characteristics())
	// Sorted at the stage level means natural order. A source sorted by
	// a custom comparator cannot elide a natural sort downstream.
	if flg.has(flagSorted) {
		if hc, ok := spl.(spliterator.HasComparator[S]); ok && hc.Comparator() != nil {
			flg = flg.combine(0, flagSorted)
		}
	}
	return &head[S]{st: st, spl: spl, flg: flg}
}

func newSupplierHead[S any](st *pipelineState, supplier func() spliterator.Spliterator[S], c spliterator.Characteristics) *head[S] {
	return &head[S]{st: st, supplier: supplier, flg: sourceFlags(c)}
}

func (h *head[S]) resolve() spliterator.Spliterator[S] {
	if h.spl == nil {
		h.spl = h.supplier()
		h.supplier = nil
	}
	return h.spl
}

func (h *head[S]) flags() pipeFlags      { return h.flg }
func (h *head[S]) state() *pipelineState { return h.st }

func (h *head[S]) push(ec *evalContext, out Sink[S]) bool {
	spl := h.resolve()
	out.Begin(spliterator.ExactSizeIfKnown(spl))
	// Element-at-a-time traversal is needed both for short-circuiting
	// sinks and for cancellation polling when a context is attached.
	if ec.combined.has(flagShortCircuit) || ec.ctx.Done() != nil {
		if driveWithCancel(ec, spl, out) && out.Cancelled() {
			ec.short.Store(true)
		}
	} else {
		spl.ForEachRemaining(out.Accept)
	}
	out.End()
	return out.Cancelled()
}

func (h *head[S]) parallelInto(ec *evalContext, mk func(leaf int) Sink[S]) (int, error) {
	return runLeaves(ec, h.resolve(), mk)
}

func (h *head[S]) source(ec *evalContext) *sourceChain[S] {
	return spliteratorChain(h.resolve(), h.flg)
}

// exactCount reports the source size without traversal, or -1 when it
// is not known exactly. Only the head implements this; any interposed
// stage may add, drop, or reorder elements.
func (h *head[S]) exactCount(*evalContext) int64 {
	if h.flg.has(flagSized) {
		return spliterator.ExactSizeIfKnown(h.resolve())
	}
	return -1
}

// statelessOp is an intermediate stage that needs no per-run state
// beyond its sink wrapper, so it fuses into sequential pushes, leaf
// sinks, and pull rebinding alike.
type statelessOp[IN, OUT any] struct {
	st   *pipelineState
	up   pipe[IN]
	flg  pipeFlags
	wrap func(ec *evalContext, down Sink[OUT]) Sink[IN]
}

func newStateless[IN, OUT any](up pipe[IN], set, clear pipeFlags, wrap func(*evalContext, Sink[OUT]) Sink[IN]) *statelessOp[IN, OUT] {
	return &statelessOp[IN, OUT]{
		st:   up.state(),
		up:   up,
		flg:  up.flags().combine(set, clear),
		wrap: wrap,
	}
}

func (o *statelessOp[IN, OUT]) flags() pipeFlags      { return o.flg }
func (o *statelessOp[IN, OUT]) state() *pipelineState { return o.st }

func (o *statelessOp[IN, OUT]) push(ec *evalContext, out Sink[OUT]) bool {
	return o.up.push(ec, o.wrap(ec, out))
}

func (o *statelessOp[IN, OUT]) parallelInto(ec *evalContext, mk func(leaf int) Sink[OUT]) (int, error) {
	return o.up.parallelInto(ec, func(leaf int) Sink[IN] {
		return o.wrap(ec, mk(leaf))
	})
}

func (o *statelessOp[IN, OUT]) source(ec *evalContext) *sourceChain[OUT] {
	upc := o.up.source(ec)
	return &sourceChain[OUT]{
		handle: upc.handle,
		flg:    o.flg,
		bind: func(h splitHandle, down Sink[OUT]) boundChain {
			return upc.bind(h, o.wrap(ec, down))
		},
	}
}

// statefulOp is an intermediate stage that must see the whole upstream
// run before emitting (sort, dedup, slice). Sequentially it still
// fuses as a buffering sink; in parallel it re-sources the pipeline
// through parSource, usually by materializing the upstream.
type statefulOp[T any] struct {
	st        *pipelineState
	up        pipe[T]
	flg       pipeFlags
	seqWrap   func(ec *evalContext, down Sink[T]) Sink[T]
	parSource func(ec *evalContext, up pipe[T]) spliterator.Spliterator[T]
}

func newStateful[T any](up pipe[T], set, clear pipeFlags,
	seqWrap func(*evalContext, Sink[T]) Sink[T],
	parSource func(*evalContext, pipe[T]) spliterator.Spliterator[T],
) *statefulOp[T] {
	return &statefulOp[T]{
		st:        up.state(),
		up:        up,
		flg:       up.flags().combine(set, clear),
		seqWrap:   seqWrap,
		parSource: parSource,
	}
}

func (o *statefulOp[T]) flags() pipeFlags      { return o.flg }
func (o *statefulOp[T]) state() *pipelineState { return o.st }

func (o *statefulOp[T]) push(ec *evalContext, out Sink[T]) bool {
	return o.up.push(ec, o.seqWrap(ec, out))
}

func (o *statefulOp[T]) parallelInto(ec *evalContext, mk func(leaf int) Sink[T]) (int, error) {
	return runLeaves(ec, o.parSource(ec, o.up), mk)
}

func (o *statefulOp[T]) source(ec *evalContext) *sourceChain[T] {
	if !ec.parallel {
		upc := o.up.source(ec)
		return &sourceChain[T]{
			handle: upc.handle,
			flg:    o.flg,
			bind: func(h splitHandle, down Sink[T]) boundChain {
				return upc.bind(h, o.seqWrap(ec, down))
			},
		}
	}
	return spliteratorChain(o.parSource(ec, o.up), o.flg)
}

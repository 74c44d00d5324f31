package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/spliterator"
)

// cancelPollInterval is how many elements a cancellable drive pushes
// between context checks. Sink and quiesce state is checked per element.
const cancelPollInterval = 1 << 10

// defaultLeafFactor scales the parallel split budget: a run aims for
// about parallelism*factor leaves.
const defaultLeafFactor = 4

// evalContext carries the state of one terminal evaluation: the frozen
// configuration, the combined stage flags including the terminal's own,
// and the cross-goroutine latches used by parallel runs.
type evalContext struct {
	ctx         context.Context
	combined    pipeFlags
	parallel    bool
	parallelism int
	leafFactor  int
	spinedChunk int
	logger      *slog.Logger
	metrics     *metric.Metrics
	start       time.Time
	id          string
	op          string

	// quiesce asks all in-flight leaves to stop: set on short-circuit
	// resolution and on the first leaf failure.
	quiesce atomic.Bool
	leaves  atomic.Int64
	short   atomic.Bool
	// foreign holds a non-carrier panic value from a leaf goroutine so
	// it can be re-raised on the caller's goroutine.
	foreign atomic.Pointer[any]
}

func (ec *evalContext) mode() string {
	if ec.parallel {
		return "parallel"
	}
	return "sequential"
}

// claim marks the pipeline consumed and opens an evaluation. Exactly
// one terminal operation wins the claim; later attempts fail with
// ErrStreamConsumed. termFlags adds the terminal's own flags, notably
// flagShortCircuit for early-exit terminals.
func claim[T any](s *Stream[T], op string, termFlags pipeFlags) (*evalContext, error) {
	st := s.st
	if !st.consumed.CompareAndSwap(false, true) {
		return nil, errors.WrapInvalid(errors.ErrStreamConsumed, "Stream", op, "begin evaluation")
	}
	if err := st.ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "Stream", op, "begin evaluation")
	}
	ec := &evalContext{
		ctx:         st.ctx,
		combined:    s.p.flags() | termFlags,
		parallel:    st.parallel,
		parallelism: st.parallelism,
		leafFactor:  st.leafFactor,
		spinedChunk: st.spinedChunk,
		logger:      st.logger,
		metrics:     st.metrics,
		start:       time.Now(),
		id:          uuid.NewString(),
		op:          op,
	}
	ec.logger.Debug("pipeline evaluation started",
		"evaluation_id", ec.id,
		"operation", op,
		"mode", ec.mode())
	return ec, nil
}

// finish closes an evaluation: it recovers a tunneled carrier into
// *errp, records metrics, and logs the outcome. Foreign panic values
// are re-raised unchanged.
func (ec *evalContext) finish(errp *error) {
	if r := recover(); r != nil {
		*errp = errors.Recover(r)
	}
	dur := time.Since(ec.start)
	outcome := "ok"
	if *errp != nil {
		outcome = "error"
	}
	if ec.metrics != nil {
		ec.metrics.RecordEvaluation(ec.mode(), outcome, dur)
		if n := ec.leaves.Load(); n > 0 {
			ec.metrics.RecordParallelLeaves(int(n))
		}
		if ec.short.Load() {
			ec.metrics.RecordShortCircuit(ec.mode())
		}
		if *errp != nil {
			ec.metrics.RecordError("Stream."+ec.op, errors.Classify(*errp).String())
		}
	}
	if *errp != nil {
		ec.logger.Debug("pipeline evaluation failed",
			"evaluation_id", ec.id,
			"operation", ec.op,
			"mode", ec.mode(),
			"duration", dur,
			"error", *errp)
		return
	}
	ec.logger.Debug("pipeline evaluation finished",
		"evaluation_id", ec.id,
		"operation", ec.op,
		"mode", ec.mode(),
		"duration", dur,
		"short_circuit", ec.short.Load())
}

// driveWithCancel pushes elements one at a time, checking the sink's
// cancellation state and the evaluation quiesce latch before every
// element and the context at cancelPollInterval boundaries. It reports
// whether traversal stopped before the source was exhausted.
func driveWithCancel[S any](ec *evalContext, spl spliterator.Spliterator[S], snk Sink[S]) bool {
	polled := 0
	for {
		if snk.Cancelled() || ec.quiesce.Load() {
			return true
		}
		if polled++; polled == cancelPollInterval {
			polled = 0
			if err := ec.ctx.Err(); err != nil {
				errors.Tunnel(errors.WrapTransient(err, "Stream", ec.op, "continue evaluation"))
			}
		}
		if !spl.TryAdvance(snk.Accept) {
			return false
		}
	}
}

func (ec *evalContext) leafBudget() int {
	factor := ec.leafFactor
	if factor <= 0 {
		factor = defaultLeafFactor
	}
	return ec.parallelism * factor
}

// decompose splits spl into at most budget leaves, appended in
// encounter order. The budget halves with each split so leaf counts
// stay near the budget even for sources that split unevenly, and
// splitting stops once a piece's estimate drops to the target size.
func decompose[S any](spl spliterator.Spliterator[S], budget int, target int64, leaves []spliterator.Spliterator[S]) []spliterator.Spliterator[S] {
	for budget > 1 && spl.EstimateSize() > target {
		prefix := spl.TrySplit()
		if prefix == nil {
			break
		}
		leaves = decompose(prefix, budget/2, target, leaves)
		budget -= budget / 2
	}
	return append(leaves, spl)
}

// runLeaves decomposes the source and drives one sink chain per leaf on
// up to parallelism goroutines. Sinks are created on the caller's
// goroutine in leaf order before any traversal starts, so stateful sink
// constructors need no locking and leaf results can be combined in
// encounter order. The first failing leaf quiesces the rest; a foreign
// panic is re-raised on the caller's goroutine after all leaves stop.
func runLeaves[S any](ec *evalContext, spl spliterator.Spliterator[S], mk func(leaf int) Sink[S]) (int, error) {
	budget := ec.leafBudget()
	target := int64(1)
	if t := spl.EstimateSize() / int64(budget); t > target {
		target = t
	}
	leaves := decompose(spl, budget, target, nil)
	ec.leaves.Add(int64(len(leaves)))

	sinks := make([]Sink[S], len(leaves))
	for i := range leaves {
		sinks[i] = mk(i)
	}

	g, gctx := errgroup.WithContext(ec.ctx)
	g.SetLimit(ec.parallelism)
	for i := range leaves {
		leaf, snk := leaves[i], sinks[i]
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if c, ok := r.(*errors.Carrier); ok {
						err = c.Unwrap()
					} else {
						ec.foreign.CompareAndSwap(nil, &r)
						err = errors.WrapFatal(fmt.Errorf("panic: %v", r), "Stream", ec.op, "traverse leaf")
					}
					ec.quiesce.Store(true)
				}
			}()
			if gctx.Err() != nil || ec.quiesce.Load() {
				return nil
			}
			snk.Begin(spliterator.ExactSizeIfKnown(leaf))
			if driveWithCancel(ec, leaf, snk) && snk.Cancelled() {
				ec.short.Store(true)
			}
			snk.End()
			return nil
		})
	}
	err := g.Wait()
	if p := ec.foreign.Load(); p != nil {
		panic(*p)
	}
	return len(leaves), err
}

// materializeNode runs the upstream to completion and captures its
// output as a node, decomposing in parallel when the evaluation is
// parallel. Errors tunnel out as carrier panics.
func materializeNode[T any](ec *evalContext, up pipe[T]) node[T] {
	if !ec.parallel {
		b := newNodeBuilder[T](ec.spinedChunk)
		up.push(ec, b)
		return b.build()
	}
	var builders []*sliceBuilder[T]
	if _, err := up.parallelInto(ec, func(int) Sink[T] {
		b := newNodeBuilder[T](ec.spinedChunk)
		builders = append(builders, b)
		return b
	}); err != nil {
		errors.Tunnel(err)
	}
	children := make([]node[T], len(builders))
	for i, b := range builders {
		children[i] = b.build()
	}
	return newTreeNode(children)
}

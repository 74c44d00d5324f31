package stream

import "github.com/c360/streamkit/spliterator"

// pipelineSpliterator adapts a pipeline prefix into a pull-style
// spliterator. Pulled traversal pushes upstream elements through the
// bound sink chain into a spill buffer and hands them out one by one;
// a single upstream element may buffer zero or many output elements,
// so the buffer absorbs the fan-out. Splitting is only offered while
// the spliterator is untouched and the evaluation is parallel, and it
// splits the source handle, sharing the chain with the sibling.
type pipelineSpliterator[OUT any] struct {
	chain    *sourceChain[OUT]
	handle   splitHandle
	parallel bool
	chunk    int

	buffer   *spinedBuffer[OUT]
	bound    boundChain
	next     int64
	finished bool
}

func newPipelineSpliterator[OUT any](chain *sourceChain[OUT], parallel bool, chunk int) *pipelineSpliterator[OUT] {
	return &pipelineSpliterator[OUT]{chain: chain, handle: chain.handle, parallel: parallel, chunk: chunk}
}

func (s *pipelineSpliterator[OUT]) handleSize() int64 {
	if s.handle.characteristics().Has(spliterator.Sized) {
		return s.handle.estimateSize()
	}
	return -1
}

func (s *pipelineSpliterator[OUT]) initPartial() {
	s.buffer = &spinedBuffer[OUT]{firstChunk: s.chunk}
	s.bound = s.chain.bind(s.handle, &spinedSink[OUT]{buf: s.buffer})
	s.bound.begin(s.handleSize())
}

// fill advances the upstream until at least one element lands in the
// buffer or the upstream is exhausted or cancelled. The end callback
// runs exactly once and may itself flush elements, so the loop
// re-checks the buffer after marking the traversal finished.
func (s *pipelineSpliterator[OUT]) fill() bool {
	for s.buffer.count() == 0 {
		if s.bound.cancelled() || !s.bound.advance() {
			if s.finished {
				return false
			}
			s.bound.end()
			s.finished = true
		}
	}
	return true
}

func (s *pipelineSpliterator[OUT]) doAdvance() bool {
	if s.buffer == nil {
		if s.finished {
			return false
		}
		s.initPartial()
		s.next = 0
		return s.fill()
	}
	s.next++
	if s.next < s.buffer.count() {
		return true
	}
	s.next = 0
	s.buffer.clear()
	return s.fill()
}

func (s *pipelineSpliterator[OUT]) TryAdvance(action func(OUT)) bool {
	if !s.doAdvance() {
		return false
	}
	action(s.buffer.get(s.next))
	return true
}

func (s *pipelineSpliterator[OUT]) ForEachRemaining(action func(OUT)) {
	if s.buffer == nil && !s.finished {
		// Untouched, so skip buffering and push straight to the action.
		b := s.chain.bind(s.handle, &consumerSink[OUT]{fn: action})
		b.begin(s.handleSize())
		if s.chain.flg.has(flagShortCircuit) {
			for !b.cancelled() && b.advance() {
			}
		} else {
			b.forEach()
		}
		b.end()
		s.finished = true
		return
	}
	for s.TryAdvance(action) {
	}
}

func (s *pipelineSpliterator[OUT]) TrySplit() spliterator.Spliterator[OUT] {
	if !s.parallel || s.buffer != nil || s.finished {
		return nil
	}
	h := s.handle.trySplit()
	if h == nil {
		return nil
	}
	return &pipelineSpliterator[OUT]{chain: s.chain, handle: h, parallel: true, chunk: s.chunk}
}

func (s *pipelineSpliterator[OUT]) EstimateSize() int64 {
	return s.handle.estimateSize()
}

// Characteristics reports the chain's output properties. A size-
// preserving chain defers Sized and Subsized to the source handle,
// since splits of a merely Sized source lose exactness.
func (s *pipelineSpliterator[OUT]) Characteristics() spliterator.Characteristics {
	c := flagCharacteristics(s.chain.flg)
	if c.Has(spliterator.Sized) {
		c = c.Without(spliterator.Sized | spliterator.Subsized)
		c = c.With(s.handle.characteristics() & (spliterator.Sized | spliterator.Subsized))
	}
	return c
}

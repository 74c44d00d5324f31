package stream

import (
	"iter"

	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/spliterator"
)

// ForEach invokes action on every element. Parallel evaluation pushes
// leaves concurrently with no ordering guarantee, so action must be
// safe for concurrent use in parallel mode; use ForEachOrdered when
// encounter order matters.
func (s *Stream[T]) ForEach(action func(T)) error {
	if action == nil {
		panic("stream: nil action")
	}
	return s.forEachTerminal("ForEach", action)
}

// ForEachErr is ForEach for fallible actions. The first error aborts
// the evaluation and is returned from the terminal.
func (s *Stream[T]) ForEachErr(action func(T) error) error {
	if action == nil {
		panic("stream: nil action")
	}
	return s.forEachTerminal("ForEachErr", func(v T) {
		if err := action(v); err != nil {
			errors.Tunnel(errors.Wrap(err, "Stream", "ForEachErr", "apply action"))
		}
	})
}

func (s *Stream[T]) forEachTerminal(op string, action func(T)) (err error) {
	ec, err := claim(s, op, 0)
	if err != nil {
		return err
	}
	defer ec.finish(&err)
	if ec.parallel {
		_, err = s.p.parallelInto(ec, func(int) Sink[T] {
			return &consumerSink[T]{fn: action}
		})
		return err
	}
	s.p.push(ec, &consumerSink[T]{fn: action})
	return nil
}

// ForEachOrdered invokes action on every element in encounter order.
// Parallel evaluation materializes the leaves and runs the actions on
// the calling goroutine after the join.
func (s *Stream[T]) ForEachOrdered(action func(T)) (err error) {
	if action == nil {
		panic("stream: nil action")
	}
	ec, err := claim(s, "ForEachOrdered", 0)
	if err != nil {
		return err
	}
	defer ec.finish(&err)
	if ec.parallel {
		materializeNode(ec, s.p).forEach(action)
		return nil
	}
	s.p.push(ec, &consumerSink[T]{fn: action})
	return nil
}

// ToSlice collects the elements into a slice in encounter order. On
// success the result is non-nil even when empty.
func (s *Stream[T]) ToSlice() (out []T, err error) {
	ec, err := claim(s, "ToSlice", 0)
	if err != nil {
		return nil, err
	}
	defer ec.finish(&err)
	if ec.parallel {
		out = flatten(materializeNode(ec, s.p))
	} else {
		b := newNodeBuilder[T](ec.spinedChunk)
		s.p.push(ec, b)
		out = flatten(b.build())
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Count returns the number of elements. A sized source with no
// interposed stages reports its size without traversing.
func (s *Stream[T]) Count() (n int64, err error) {
	ec, err := claim(s, "Count", 0)
	if err != nil {
		return 0, err
	}
	defer ec.finish(&err)
	if fast, ok := s.p.(interface{ exactCount(*evalContext) int64 }); ok {
		if c := fast.exactCount(ec); c >= 0 {
			return c, nil
		}
	}
	if ec.parallel {
		var sinks []*countingSink[T]
		if _, err = s.p.parallelInto(ec, func(int) Sink[T] {
			k := &countingSink[T]{}
			sinks = append(sinks, k)
			return k
		}); err != nil {
			return 0, err
		}
		for _, k := range sinks {
			n += k.n
		}
		return n, nil
	}
	k := &countingSink[T]{}
	s.p.push(ec, k)
	return k.n, nil
}

// Spliterator claims the pipeline and returns a spliterator fusing the
// stage chain over the source. Errors raised by user callbacks during
// traversal surface as *errors.Carrier panics from the traversal
// methods; callers either stay inside stream terminals, which recover
// them, or handle the carrier with errors.Recover themselves.
func (s *Stream[T]) Spliterator() (spl spliterator.Spliterator[T], err error) {
	ec, err := claim(s, "Spliterator", 0)
	if err != nil {
		return nil, err
	}
	defer ec.finish(&err)
	return newPipelineSpliterator(s.p.source(ec), ec.parallel, ec.spinedChunk), nil
}

// Iterator claims the pipeline and returns a single-use range
// sequence. Range loops cannot return an error, so an evaluation
// failure ends the sequence early; Err reports it afterwards.
func (s *Stream[T]) Iterator() iter.Seq[T] {
	return func(yield func(T) bool) {
		spl, err := s.Spliterator()
		if err != nil {
			s.iterErr = err
			return
		}
		defer func() {
			if r := recover(); r != nil {
				rerr := errors.Recover(r)
				s.iterErr = rerr
				s.st.logger.Warn("stream iteration aborted",
					"error", rerr)
			}
		}()
		spliterator.Seq(spl)(yield)
	}
}

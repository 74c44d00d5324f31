package stream

import (
	"math"

	"github.com/c360/streamkit/spliterator"
)

// node is an immutable container of elements produced by one parallel
// evaluation. Leaves hold slices; trees concatenate children without
// copying, so combining leaf results is O(1) per level.
type node[T any] interface {
	spliterator() spliterator.Spliterator[T]
	forEach(action func(T))
	count() int64
	copyInto(dst []T) int
}

type leafNode[T any] []T

func (n leafNode[T]) spliterator() spliterator.Spliterator[T] {
	return spliterator.OfSlice([]T(n))
}

func (n leafNode[T]) forEach(action func(T)) {
	for _, v := range n {
		action(v)
	}
}

func (n leafNode[T]) count() int64 { return int64(len(n)) }

func (n leafNode[T]) copyInto(dst []T) int { return copy(dst, n) }

type treeNode[T any] struct {
	children []node[T]
	size     int64
}

// newTreeNode concatenates children in encounter order. A single child
// is returned as-is rather than wrapped.
func newTreeNode[T any](children []node[T]) node[T] {
	if len(children) == 1 {
		return children[0]
	}
	t := &treeNode[T]{children: children}
	for _, c := range children {
		t.size += c.count()
	}
	return t
}

func (n *treeNode[T]) spliterator() spliterator.Spliterator[T] {
	return &treeSpliterator[T]{children: n.children}
}

func (n *treeNode[T]) forEach(action func(T)) {
	for _, c := range n.children {
		c.forEach(action)
	}
}

func (n *treeNode[T]) count() int64 { return n.size }

func (n *treeNode[T]) copyInto(dst []T) int {
	off := 0
	for _, c := range n.children {
		off += c.copyInto(dst[off:])
	}
	return off
}

// treeSpliterator traverses a tree node's children in order, promoting
// each child to its own spliterator on demand so re-splitting a
// materialized result decomposes along the original leaf boundaries.
type treeSpliterator[T any] struct {
	children []node[T]
	cur      spliterator.Spliterator[T]
}

func (s *treeSpliterator[T]) TryAdvance(action func(T)) bool {
	for {
		if s.cur == nil {
			if len(s.children) == 0 {
				return false
			}
			s.cur = s.children[0].spliterator()
			s.children = s.children[1:]
		}
		if s.cur.TryAdvance(action) {
			return true
		}
		s.cur = nil
	}
}

func (s *treeSpliterator[T]) ForEachRemaining(action func(T)) {
	if s.cur != nil {
		s.cur.ForEachRemaining(action)
		s.cur = nil
	}
	for _, c := range s.children {
		c.forEach(action)
	}
	s.children = nil
}

func (s *treeSpliterator[T]) TrySplit() spliterator.Spliterator[T] {
	if s.cur == nil {
		switch len(s.children) {
		case 0:
			return nil
		case 1:
			s.cur = s.children[0].spliterator()
			s.children = nil
			return s.cur.TrySplit()
		default:
			half := len(s.children) / 2
			prefix := s.children[:half]
			s.children = s.children[half:]
			return &treeSpliterator[T]{children: prefix}
		}
	}
	return s.cur.TrySplit()
}

func (s *treeSpliterator[T]) EstimateSize() int64 {
	var n int64
	if s.cur != nil {
		n = s.cur.EstimateSize()
	}
	for _, c := range s.children {
		n += c.count()
	}
	return n
}

func (s *treeSpliterator[T]) Characteristics() spliterator.Characteristics {
	return spliterator.Ordered | spliterator.Sized | spliterator.Subsized | spliterator.Immutable
}

// flatten copies a node into a single contiguous slice, reusing the
// backing array when the node is already a leaf.
func flatten[T any](n node[T]) []T {
	if leaf, ok := n.(leafNode[T]); ok {
		return leaf
	}
	out := make([]T, n.count())
	n.copyInto(out)
	return out
}

// nodeBuilder is a sink that captures the run pushed into it as a node.
type nodeBuilder[T any] interface {
	Sink[T]
	build() node[T]
}

// sliceBuilder preallocates when Begin announces an exact size and
// falls back to a spined buffer otherwise.
type sliceBuilder[T any] struct {
	baseSink
	fixed  []T
	spined *spinedBuffer[T]
	chunk  int
}

func newNodeBuilder[T any](chunk int) *sliceBuilder[T] { return &sliceBuilder[T]{chunk: chunk} }

func (b *sliceBuilder[T]) Begin(size int64) {
	if size >= 0 && size < math.MaxInt32 {
		b.fixed = make([]T, 0, size)
		b.spined = nil
		return
	}
	b.spined = &spinedBuffer[T]{firstChunk: b.chunk}
	b.fixed = nil
}

func (b *sliceBuilder[T]) Accept(v T) {
	if b.spined != nil {
		b.spined.accept(v)
		return
	}
	b.fixed = append(b.fixed, v)
}

func (b *sliceBuilder[T]) build() node[T] {
	if b.spined != nil {
		return leafNode[T](b.spined.asSlice())
	}
	return leafNode[T](b.fixed)
}

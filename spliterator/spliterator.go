// Package spliterator defines the splittable-source protocol that feeds
// StreamKit pipelines: single-element traversal, bulk traversal,
// recursive splitting for parallel evaluation, size estimation, and
// structural characteristics.
package spliterator

import "strings"

// Characteristics is a bitset describing structural properties of a
// spliterator's source. Characteristics let the pipeline pick evaluation
// strategies: exact-size buffer allocation, sort elision, distinct
// elision, and slice decomposition.
type Characteristics uint32

const (
	// Ordered means encounter order is defined and must be preserved by
	// order-sensitive operations.
	Ordered Characteristics = 1 << iota
	// Distinct means no two elements of the source are equal.
	Distinct
	// Sorted means elements appear in natural ascending order.
	Sorted
	// Sized means EstimateSize returns the exact remaining count before
	// traversal begins.
	Sized
	// Nonnull documents that the source never produces absent values.
	// Go elements always carry a value; the bit exists for sources whose
	// upstream protocol distinguishes presence.
	Nonnull
	// Immutable means the underlying source cannot be structurally
	// modified during traversal.
	Immutable
	// Concurrent means the source may be safely modified concurrently
	// with traversal, and splits share it.
	Concurrent
	// Subsized means Sized holds for this spliterator and every split
	// descending from it.
	Subsized
)

// Has reports whether every bit of mask is set.
func (c Characteristics) Has(mask Characteristics) bool {
	return c&mask == mask
}

// HasAny reports whether any bit of mask is set.
func (c Characteristics) HasAny(mask Characteristics) bool {
	return c&mask != 0
}

// With returns c with the bits of mask set.
func (c Characteristics) With(mask Characteristics) Characteristics {
	return c | mask
}

// Without returns c with the bits of mask cleared.
func (c Characteristics) Without(mask Characteristics) Characteristics {
	return c &^ mask
}

// String returns a pipe-separated list of set characteristic names.
func (c Characteristics) String() string {
	if c == 0 {
		return "none"
	}
	names := []struct {
		bit  Characteristics
		name string
	}{
		{Ordered, "ordered"},
		{Distinct, "distinct"},
		{Sorted, "sorted"},
		{Sized, "sized"},
		{Nonnull, "nonnull"},
		{Immutable, "immutable"},
		{Concurrent, "concurrent"},
		{Subsized, "subsized"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Spliterator is a traversable, splittable view over a sequence of
// elements. A spliterator is single-owner: callers must not invoke its
// methods concurrently. Parallelism is obtained by TrySplit: the
// returned spliterator covers a prefix of the remaining elements and the
// receiver covers the rest, and the two may then be traversed by
// different goroutines.
//
// Contract:
//   - TryAdvance invokes action on the next element and returns true,
//     or returns false without invoking it when no elements remain.
//   - ForEachRemaining traverses all remaining elements; it is
//     equivalent to looping TryAdvance but implementations may take a
//     faster bulk path.
//   - TrySplit returns nil when the remainder cannot or should not be
//     split further. After traversal has begun, implementations may
//     always return nil. For a Sized|Subsized spliterator the sizes of
//     the split and the remainder sum to the size before the split.
//   - EstimateSize never increases across calls; an exhausted
//     spliterator reports 0; unknown and infinite sources report
//     math.MaxInt64.
//
// Actions passed to traversal methods must be non-nil; constructors in
// this package panic on nil callbacks rather than deferring the fault.
type Spliterator[T any] interface {
	TryAdvance(action func(T)) bool
	ForEachRemaining(action func(T))
	TrySplit() Spliterator[T]
	EstimateSize() int64
	Characteristics() Characteristics
}

// HasComparator is implemented by Sorted spliterators that carry the
// comparison function establishing their order. A nil comparator means
// the natural ordering of the element type.
type HasComparator[T any] interface {
	Comparator() func(a, b T) int
}

// ExactSizeIfKnown returns s.EstimateSize() when s reports Sized, and
// -1 otherwise.
func ExactSizeIfKnown[T any](s Spliterator[T]) int64 {
	if s.Characteristics().Has(Sized) {
		return s.EstimateSize()
	}
	return -1
}

package stream

import (
	"cmp"
	"math"
)

// Integer matches the built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float matches the built-in floating-point types.
type Float interface {
	~float32 | ~float64
}

// Number matches any built-in numeric type.
type Number interface {
	Integer | Float
}

// Sum adds the elements with plain + accumulation: exact for integers
// up to wraparound. Floating-point sums accumulate rounding error here;
// use SumFloat for compensated summation.
func Sum[T Number](s *Stream[T]) (T, error) {
	var zero T
	return foldTerminal(s, "Sum", zero,
		func(acc T, v T) T { return acc + v },
		func(a T, b T) T { return a + b })
}

// SumFloat adds the elements with compensated summation, recovering
// low-order bits a plain sum loses to rounding: summing 1e16, 1.0,
// -1e16 yields exactly 1.0. Mixed-sign infinities still yield NaN,
// while a sum that legitimately overflowed to infinity is repaired
// from the plain sum.
func SumFloat[T Float](s *Stream[T]) (float64, error) {
	acc, err := collectTerminal(s, "SumFloat",
		func() *floatAccum { return &floatAccum{} },
		func(a *floatAccum, v T) { a.add(float64(v)) },
		(*floatAccum).merge)
	if err != nil {
		return 0, err
	}
	return acc.value(), nil
}

// AverageFloat returns the compensated mean of the elements; ok is
// false for an empty stream.
func AverageFloat[T Float](s *Stream[T]) (float64, bool, error) {
	acc, err := collectTerminal(s, "AverageFloat",
		func() *avgAccum { return &avgAccum{} },
		func(a *avgAccum, v T) {
			a.count++
			a.add(float64(v))
		},
		func(a, b *avgAccum) {
			a.count += b.count
			a.floatAccum.merge(&b.floatAccum)
		})
	if err != nil {
		return 0, false, err
	}
	if acc.count == 0 {
		return 0, false, nil
	}
	return acc.value() / float64(acc.count), true, nil
}

// floatAccum sums float64 values with Neumaier compensation: sum holds
// the high-order accumulation, comp collects the low-order bits each
// addition rounds away, whichever operand they fall out of. simple is
// the uncompensated sum kept for the infinity repair in value.
type floatAccum struct {
	sum    float64
	comp   float64
	simple float64
}

func (a *floatAccum) add(v float64) {
	t := a.sum + v
	if math.Abs(a.sum) >= math.Abs(v) {
		a.comp += (a.sum - t) + v
	} else {
		a.comp += (v - t) + a.sum
	}
	a.sum = t
	a.simple += v
}

// merge folds b into a. The naive sums add directly; the compensated
// parts re-enter through add so their low-order bits are preserved.
func (a *floatAccum) merge(b *floatAccum) {
	simple := a.simple + b.simple
	a.add(b.sum)
	a.add(b.comp)
	a.simple = simple
}

// value returns the compensated total. Accumulating any infinity drives
// comp to NaN; when the plain sum is itself infinite the stream held a
// uniform-sign infinity and the plain sum is the right answer. A NaN
// plain sum means mixed infinities or a NaN element, and NaN stands.
func (a *floatAccum) value() float64 {
	total := a.sum + a.comp
	if math.IsNaN(total) && math.IsInf(a.simple, 0) {
		return a.simple
	}
	return total
}

type avgAccum struct {
	floatAccum
	count int64
}

// IntStats summarizes an integer stream. Sum wraps on overflow the way
// plain int64 addition does.
type IntStats[T Integer] struct {
	Count int64
	Sum   int64
	Min   T
	Max   T
}

// Average returns the mean; ok is false when the summary is empty.
func (st IntStats[T]) Average() (float64, bool) {
	if st.Count == 0 {
		return 0, false
	}
	return float64(st.Sum) / float64(st.Count), true
}

// SummarizeInt computes count, sum, and extrema in one pass.
func SummarizeInt[T Integer](s *Stream[T]) (IntStats[T], error) {
	acc, err := collectTerminal(s, "SummarizeInt",
		func() *IntStats[T] { return &IntStats[T]{} },
		func(a *IntStats[T], v T) {
			if a.Count == 0 {
				a.Min, a.Max = v, v
			} else {
				a.Min = min(a.Min, v)
				a.Max = max(a.Max, v)
			}
			a.Count++
			a.Sum += int64(v)
		},
		func(a, b *IntStats[T]) {
			if b.Count == 0 {
				return
			}
			if a.Count == 0 {
				*a = *b
				return
			}
			a.Count += b.Count
			a.Sum += b.Sum
			a.Min = min(a.Min, b.Min)
			a.Max = max(a.Max, b.Max)
		})
	if err != nil {
		return IntStats[T]{}, err
	}
	return *acc, nil
}

// FloatStats summarizes a float stream. Sum is compensated. Min and
// Max seed at +Inf and -Inf, so an empty summary reports Min=+Inf and
// Max=-Inf; a NaN element propagates into both.
type FloatStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Average returns the mean of the compensated sum; ok is false when
// the summary is empty.
func (st FloatStats) Average() (float64, bool) {
	if st.Count == 0 {
		return 0, false
	}
	return st.Sum / float64(st.Count), true
}

// SummarizeFloat computes count, compensated sum, and extrema in one
// pass.
func SummarizeFloat[T Float](s *Stream[T]) (FloatStats, error) {
	acc, err := collectTerminal(s, "SummarizeFloat",
		newFloatStatsAccum,
		func(a *floatStatsAccum, v T) { a.accept(float64(v)) },
		(*floatStatsAccum).combine)
	if err != nil {
		return FloatStats{}, err
	}
	return acc.stats(), nil
}

type floatStatsAccum struct {
	floatAccum
	count int64
	min   float64
	max   float64
}

func newFloatStatsAccum() *floatStatsAccum {
	return &floatStatsAccum{min: math.Inf(1), max: math.Inf(-1)}
}

func (a *floatStatsAccum) accept(v float64) {
	a.count++
	a.add(v)
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
}

func (a *floatStatsAccum) combine(b *floatStatsAccum) {
	a.count += b.count
	a.floatAccum.merge(&b.floatAccum)
	a.min = math.Min(a.min, b.min)
	a.max = math.Max(a.max, b.max)
}

func (a *floatStatsAccum) stats() FloatStats {
	return FloatStats{Count: a.count, Sum: a.value(), Min: a.min, Max: a.max}
}

// MinOf returns the smallest element by natural order.
func MinOf[T cmp.Ordered](s *Stream[T]) (T, bool, error) {
	return s.Min(cmp.Compare[T])
}

// MaxOf returns the largest element by natural order.
func MaxOf[T cmp.Ordered](s *Stream[T]) (T, bool, error) {
	return s.Max(cmp.Compare[T])
}

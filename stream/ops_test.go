package stream

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	cerrors "github.com/c360/streamkit/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	got, err := RangeClosed(1, 10).
		Filter(func(v int64) bool { return v%2 == 0 }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 6, 8, 10}, got)
}

func TestFilterAll(t *testing.T) {
	got, err := Of(1, 2, 3).Filter(func(int) bool { return false }).ToSlice()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMapChangesElementType(t *testing.T) {
	got, err := Map(Of(1, 2, 3), func(v int) string {
		return fmt.Sprintf("item-%d", v)
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"item-1", "item-2", "item-3"}, got)
}

func TestMapFilterComposition(t *testing.T) {
	got, err := Map(RangeStream(0, 10), func(v int64) int64 { return v * v }).
		Filter(func(v int64) bool { return v > 20 }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int64{25, 36, 49, 64, 81}, got)
}

func TestMapErrStopsAtFirstFailure(t *testing.T) {
	parseFailed := errors.New("parse failed")
	var seen []string

	_, err := Map(MapErr(Of("1", "2", "x", "4"), func(v string) (int, error) {
		if v == "x" {
			return 0, parseFailed
		}
		return len(v), nil
	}), func(v int) int {
		seen = append(seen, fmt.Sprint(v))
		return v
	}).ToSlice()

	require.Error(t, err)
	assert.ErrorIs(t, err, parseFailed)
	assert.Equal(t, []string{"1", "1"}, seen, "elements before the failure flow downstream")
}

func TestMapErrNilErrorPasses(t *testing.T) {
	got, err := MapErr(Of("a", "bb", "ccc"), func(v string) (int, error) {
		return len(v), nil
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestFlatMapExpandsInOrder(t *testing.T) {
	got, err := FlatMap(Of("a b", "c", "d e f"), func(v string) *Stream[string] {
		return FromSlice(strings.Fields(v))
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
}

func TestFlatMapSkipsNilSubstreams(t *testing.T) {
	got, err := FlatMap(Of(1, 2, 3, 4), func(v int) *Stream[int] {
		if v%2 == 0 {
			return nil
		}
		return Of(v, v)
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 3, 3}, got)
}

func TestFlatMapClosesSubstreams(t *testing.T) {
	closed := 0
	_, err := FlatMap(Of(1, 2, 3), func(v int) *Stream[int] {
		return Of(v).OnClose(func() error { closed++; return nil })
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, 3, closed, "every substream is closed after draining")
}

func TestFlatMapSurfacesSubstreamCloseError(t *testing.T) {
	releaseFailed := errors.New("release failed")
	_, err := FlatMap(Of(1), func(v int) *Stream[int] {
		return Of(v).OnClose(func() error { return releaseFailed })
	}).ToSlice()
	require.Error(t, err)
	assert.ErrorIs(t, err, releaseFailed)
}

func TestFlatMapShortCircuitsSubstream(t *testing.T) {
	pulled := 0
	got, err := FlatMap(Of(0, 100), func(base int) *Stream[int] {
		return Generate(func() int {
			pulled++
			return base + pulled
		}).Limit(1000)
	}).Limit(3).ToSlice()

	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Less(t, pulled, 100, "downstream limit must cut substream traversal")
}

func TestFlatMapConsumedSubstreamFails(t *testing.T) {
	sub := Of(9)
	_, err := sub.ToSlice()
	require.NoError(t, err)

	_, err = FlatMap(Of(1), func(int) *Stream[int] { return sub }).ToSlice()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrStreamConsumed)
}

func TestMapMulti(t *testing.T) {
	got, err := MapMulti(Of(1, 2, 3), func(v int, yield func(string)) {
		for i := 0; i < v; i++ {
			yield(fmt.Sprintf("%d.%d", v, i))
		}
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0", "2.0", "2.1", "3.0", "3.1", "3.2"}, got)
}

func TestMapMultiCanDropElements(t *testing.T) {
	got, err := MapMulti(Of(1, 2, 3, 4), func(v int, yield func(int)) {
		if v%2 == 0 {
			yield(v * 10)
		}
	}).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{20, 40}, got)
}

func TestPeekObservesWithoutAltering(t *testing.T) {
	var peeked []int64
	got, err := RangeStream(0, 5).
		Peek(func(v int64) { peeked = append(peeked, v) }).
		ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, got)
	assert.Equal(t, got, peeked)
}

func TestUnorderedKeepsElements(t *testing.T) {
	got, err := Of(3, 1, 2).Unordered().ToSlice()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, got)
}

func TestNilCallbacksPanicAtBuildTime(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"filter", func() { Of(1).Filter(nil) }},
		{"peek", func() { Of(1).Peek(nil) }},
		{"map", func() { Map[int, int](Of(1), nil) }},
		{"map err", func() { MapErr[int, int](Of(1), nil) }},
		{"flat map", func() { FlatMap[int, int](Of(1), nil) }},
		{"map multi", func() { MapMulti[int, int](Of(1), nil) }},
		{"sorted", func() { Of(1).Sorted(nil) }},
		{"take while", func() { Of(1).TakeWhile(nil) }},
		{"drop while", func() { Of(1).DropWhile(nil) }},
		{"negative limit", func() { Of(1).Limit(-1) }},
		{"negative skip", func() { Of(1).Skip(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.build)
		})
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/stream"
)

// bench carries the shared inputs of one benchmark session.
type bench struct {
	ctx      context.Context
	logger   *slog.Logger
	core     *metric.Metrics
	evalCfg  config.EvaluationConfig
	elements int64
	rounds   int
}

// benchResult is the best round of one case in one evaluation mode.
type benchResult struct {
	name     string
	mode     string
	elements int64
	duration time.Duration
	value    string
}

func (r benchResult) throughput() float64 {
	secs := r.duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.elements) / secs
}

// benchCase builds and drains one pipeline. Streams are one-shot, so
// the builder runs once per round.
type benchCase struct {
	name string
	run  func(b *bench, parallel bool) (string, error)
}

// tune applies the session's evaluation settings to a fresh pipeline.
func tune[T any](b *bench, s *stream.Stream[T], parallel bool) *stream.Stream[T] {
	s = s.WithContext(b.ctx).
		WithLogger(b.logger).
		WithMetrics(b.core).
		WithEvaluationConfig(b.evalCfg)
	if parallel {
		return s.Parallel()
	}
	return s.Sequential()
}

func defaultCases() []benchCase {
	return []benchCase{
		{name: "sum_int", run: func(b *bench, parallel bool) (string, error) {
			n := b.elements
			sum, err := stream.Sum(tune(b, stream.RangeClosed(1, n), parallel))
			if err != nil {
				return "", err
			}
			if want := n * (n + 1) / 2; sum != want {
				return "", fmt.Errorf("sum mismatch: got %d, want %d", sum, want)
			}
			return fmt.Sprintf("%d", sum), nil
		}},
		{name: "sum_float", run: func(b *bench, parallel bool) (string, error) {
			src := stream.Map(tune(b, stream.RangeClosed(1, b.elements), parallel),
				func(v int64) float64 { return 1 / float64(v) })
			sum, err := stream.SumFloat(src)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%.12f", sum), nil
		}},
		{name: "distinct_count", run: func(b *bench, parallel bool) (string, error) {
			src := stream.Map(tune(b, stream.RangeStream(0, b.elements), parallel),
				func(v int64) int64 { return v % 4096 })
			n, err := stream.Distinct(src).Count()
			if err != nil {
				return "", err
			}
			if want := min(b.elements, 4096); n != want {
				return "", fmt.Errorf("distinct count mismatch: got %d, want %d", n, want)
			}
			return fmt.Sprintf("%d", n), nil
		}},
		{name: "window_sum", run: func(b *bench, parallel bool) (string, error) {
			src := tune(b, stream.RangeStream(0, b.elements), parallel).
				Skip(b.elements / 4).
				Limit(b.elements / 2)
			sum, err := stream.Sum(src)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d", sum), nil
		}},
		{name: "summarize", run: func(b *bench, parallel bool) (string, error) {
			stats, err := stream.SummarizeInt(tune(b, stream.RangeClosed(1, b.elements), parallel))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("count=%d min=%d max=%d", stats.Count, stats.Min, stats.Max), nil
		}},
		{name: "find_first", run: func(b *bench, parallel bool) (string, error) {
			threshold := b.elements - max(b.elements/100, 1)
			src := tune(b, stream.RangeStream(0, b.elements), parallel).
				Filter(func(v int64) bool { return v >= threshold })
			v, ok, err := src.FindFirst()
			if err != nil {
				return "", err
			}
			if !ok || v != threshold {
				return "", fmt.Errorf("find mismatch: got %d ok=%t, want %d", v, ok, threshold)
			}
			return fmt.Sprintf("%d", v), nil
		}},
	}
}

// runBench drives every case in both evaluation modes and keeps the
// best round of each. The first failing round aborts the session.
func (b *bench) runBench() ([]benchResult, error) {
	var results []benchResult
	for _, c := range defaultCases() {
		for _, parallel := range []bool{false, true} {
			res, err := b.runCase(c, parallel)
			if err != nil {
				return nil, fmt.Errorf("case %s: %w", c.name, err)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

func (b *bench) runCase(c benchCase, parallel bool) (benchResult, error) {
	mode := "sequential"
	if parallel {
		mode = "parallel"
	}

	best := benchResult{name: c.name, mode: mode, elements: b.elements}
	for round := 1; round <= b.rounds; round++ {
		if err := b.ctx.Err(); err != nil {
			return benchResult{}, err
		}

		start := time.Now()
		value, err := c.run(b, parallel)
		elapsed := time.Since(start)
		if err != nil {
			return benchResult{}, err
		}

		b.logger.Debug("bench round finished",
			"case", c.name,
			"mode", mode,
			"round", round,
			"duration", elapsed,
			"value", value)

		if best.duration == 0 || elapsed < best.duration {
			best.duration = elapsed
			best.value = value
		}
	}

	b.logger.Info("bench case finished",
		"case", c.name,
		"mode", mode,
		"best", best.duration,
		"throughput", formatRate(best.throughput()))
	return best, nil
}

// printResults renders the session as an aligned table.
func printResults(w io.Writer, results []benchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CASE\tMODE\tELEMENTS\tBEST\tRATE\tVALUE")
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.name, r.mode, r.elements, r.duration.Round(time.Microsecond),
			formatRate(r.throughput()), r.value)
	}
	_ = tw.Flush()
}

func formatRate(perSecond float64) string {
	switch {
	case perSecond >= 1e9:
		return fmt.Sprintf("%.2f G/s", perSecond/1e9)
	case perSecond >= 1e6:
		return fmt.Sprintf("%.2f M/s", perSecond/1e6)
	case perSecond >= 1e3:
		return fmt.Sprintf("%.2f K/s", perSecond/1e3)
	default:
		return fmt.Sprintf("%.0f /s", perSecond)
	}
}

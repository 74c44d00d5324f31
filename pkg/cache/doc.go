// Package cache provides generic, thread-safe string-keyed caches
// with always-on statistics and optional Prometheus export.
//
// # Overview
//
// Two implementations satisfy the Cache interface:
//
//	c, _ := cache.NewLRU[string](128)
//	c.Set("greeting", "hello")
//	v, ok := c.Get("greeting")
//
// NewSimple returns a plain map cache; give it a positive entry bound
// and it evicts an arbitrary entry when full. NewLRU evicts the least
// recently used entry, where both Get and Set count as use.
//
// # Statistics and metrics
//
// Every cache tracks hits, misses, sets, deletes, evictions, and size
// through Stats(). Passing WithMetrics additionally exports those
// counters through a metric.MetricsRegistry under the streamkit_cache
// namespace, labeled by component.
//
// # Eviction callbacks
//
// WithEvictionCallback observes every entry leaving the cache,
// whether displaced by capacity, deleted, or cleared. Callbacks run
// outside the cache lock, so they may call back into the cache.
//
// The template package interns shared fragment metadata through an
// LRU from this package; connectors and applications reuse it for
// their own lookup tables.
package cache

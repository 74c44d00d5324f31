// Package cache provides generic, thread-safe string-keyed caches.
//
// Two implementations are offered:
//   - Simple: mutex-protected map with an optional entry bound; when
//     full an arbitrary entry is evicted.
//   - LRU: least-recently-used eviction backed by a list and map.
//
// Statistics are always collected. Prometheus export and eviction
// callbacks are opt-in via functional options.
package cache

import (
	"github.com/c360/streamkit/errors"
)

// Cache is a generic string-keyed cache. Implementations are safe for
// concurrent use.
type Cache[V any] interface {
	// Get retrieves a value by key. The second return is false when
	// the key is absent.
	Get(key string) (V, bool)

	// Set stores a value under key. Returns true when a new entry was
	// created, false when an existing entry was updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true when the key
	// existed.
	Delete(key string) (bool, error)

	// Clear removes all entries.
	Clear() error

	// Size returns the current number of entries.
	Size() int

	// Keys returns all keys currently present.
	Keys() []string

	// Stats returns the cache statistics tracker.
	Stats() *Statistics

	// Close releases any resources held by the cache.
	Close() error
}

// EvictCallback observes entries as they leave the cache, whether by
// eviction, deletion, or clearing. Callbacks run outside the cache
// lock; re-entrant cache calls are safe.
type EvictCallback[V any] func(key string, value V)

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "empty key")
	}
	return nil
}

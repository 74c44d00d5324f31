package cache

import (
	"sync"

	"github.com/c360/streamkit/errors"
)

// simpleCache is a mutex-protected map with an optional entry bound.
// When the bound is exceeded an arbitrary entry is evicted; callers
// needing recency-aware eviction use the LRU cache instead.
type simpleCache[V any] struct {
	mu         sync.RWMutex
	maxEntries int
	items      map[string]V
	stats      *Statistics
	metrics    *cacheMetrics
	evictFn    EvictCallback[V]
}

// NewSimple returns a map-backed cache. A non-positive maxEntries
// means unbounded.
func NewSimple[V any](maxEntries int, options ...Option[V]) (Cache[V], error) {
	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.component)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewSimple", "register metrics")
		}
	}

	return &simpleCache[V]{
		maxEntries: maxEntries,
		items:      make(map[string]V),
		stats:      NewStatistics(),
		metrics:    metrics,
		evictFn:    opts.evictFn,
	}, nil
}

func (c *simpleCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, exists := c.items[key]
	c.mu.RUnlock()

	if exists {
		c.stats.Hit()
		if c.metrics != nil {
			c.metrics.recordHit()
		}
	} else {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
	}
	return value, exists
}

func (c *simpleCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var evictKey string
	var evictValue V
	evicted := false

	c.mu.Lock()
	_, exists := c.items[key]
	if !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		// Map iteration order makes this an arbitrary victim.
		for k, v := range c.items {
			evictKey, evictValue, evicted = k, v, true
			delete(c.items, k)
			break
		}
	}
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	if evicted {
		c.stats.Eviction()
	}
	if c.metrics != nil {
		c.metrics.recordSet()
		c.metrics.updateSize(size)
		if evicted {
			c.metrics.recordEviction()
		}
	}
	if evicted && c.evictFn != nil {
		c.evictFn(evictKey, evictValue)
	}
	return !exists, nil
}

func (c *simpleCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	value, exists := c.items[key]
	if exists {
		delete(c.items, key)
	}
	size := len(c.items)
	c.mu.Unlock()

	if !exists {
		return false, nil
	}
	c.stats.Delete()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordDelete()
		c.metrics.updateSize(size)
	}
	if c.evictFn != nil {
		c.evictFn(key, value)
	}
	return true, nil
}

func (c *simpleCache[V]) Clear() error {
	c.mu.Lock()
	var drained map[string]V
	if c.evictFn != nil {
		drained = c.items
	}
	c.items = make(map[string]V)
	c.mu.Unlock()

	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.updateSize(0)
	}
	for key, value := range drained {
		c.evictFn(key, value)
	}
	return nil
}

func (c *simpleCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *simpleCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	return keys
}

func (c *simpleCache[V]) Stats() *Statistics { return c.stats }

func (c *simpleCache[V]) Close() error { return nil }

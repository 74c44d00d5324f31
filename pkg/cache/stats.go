package cache

import (
	"sync"
	"sync/atomic"
)

// Statistics tracks cache activity. Counter updates are atomic; size
// tracking is mutex-protected so current and peak stay consistent.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	mu          sync.RWMutex
	currentSize int64
	peakSize    int64
}

// NewStatistics returns a zeroed tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Hit records a lookup that found its key.
func (s *Statistics) Hit() { s.hits.Add(1) }

// Miss records a lookup that did not find its key.
func (s *Statistics) Miss() { s.misses.Add(1) }

// Set records a store operation.
func (s *Statistics) Set() { s.sets.Add(1) }

// Delete records an explicit removal.
func (s *Statistics) Delete() { s.deletes.Add(1) }

// Eviction records a capacity-driven removal.
func (s *Statistics) Eviction() { s.evictions.Add(1) }

// UpdateSize records the entry count after a mutation.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.peakSize {
		s.peakSize = size
	}
	s.mu.Unlock()
}

// Hits returns the total hit count.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the total miss count.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Sets returns the total store count.
func (s *Statistics) Sets() int64 { return s.sets.Load() }

// Deletes returns the total removal count.
func (s *Statistics) Deletes() int64 { return s.deletes.Load() }

// Evictions returns the total eviction count.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// CurrentSize returns the entry count as of the last mutation.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// PeakSize returns the largest entry count observed.
func (s *Statistics) PeakSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peakSize
}

// HitRatio returns hits/(hits+misses) in [0,1], or 0 before any lookup.
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// StatsSummary is a point-in-time snapshot of all counters.
type StatsSummary struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Deletes     int64   `json:"deletes"`
	Evictions   int64   `json:"evictions"`
	CurrentSize int64   `json:"current_size"`
	PeakSize    int64   `json:"peak_size"`
	HitRatio    float64 `json:"hit_ratio"`
}

// Summary returns a snapshot of all counters.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Sets:        s.Sets(),
		Deletes:     s.Deletes(),
		Evictions:   s.Evictions(),
		CurrentSize: s.CurrentSize(),
		PeakSize:    s.PeakSize(),
		HitRatio:    s.HitRatio(),
	}
}

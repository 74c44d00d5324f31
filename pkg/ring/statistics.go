package ring

import (
	"sync"
	"sync/atomic"
)

// Statistics tracks ring activity. Counter updates are atomic; size
// tracking is mutex-protected so current and peak stay consistent.
type Statistics struct {
	writes    atomic.Int64
	reads     atomic.Int64
	peeks     atomic.Int64
	overflows atomic.Int64
	drops     atomic.Int64

	mu          sync.RWMutex
	currentSize int64
	peakSize    int64
}

// NewStatistics returns a zeroed tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Write records an admitted item.
func (s *Statistics) Write() { s.writes.Add(1) }

// Read records a removed item.
func (s *Statistics) Read() { s.reads.Add(1) }

// Peek records a non-destructive read.
func (s *Statistics) Peek() { s.peeks.Add(1) }

// Overflow records a write that found the ring full.
func (s *Statistics) Overflow() { s.overflows.Add(1) }

// Drop records an item discarded by the overflow policy.
func (s *Statistics) Drop() { s.drops.Add(1) }

// UpdateSize records the item count after a mutation.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.peakSize {
		s.peakSize = size
	}
	s.mu.Unlock()
}

// Writes returns the total admitted item count.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Reads returns the total removed item count.
func (s *Statistics) Reads() int64 { return s.reads.Load() }

// Peeks returns the total peek count.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Overflows returns the number of writes that found the ring full.
func (s *Statistics) Overflows() int64 { return s.overflows.Load() }

// Drops returns the number of items discarded by the overflow policy.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// CurrentSize returns the item count after the latest mutation.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// PeakSize returns the largest item count observed.
func (s *Statistics) PeakSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peakSize
}

// DropRate returns drops relative to total write traffic, admitted
// writes plus drops, in the range 0.0 to 1.0.
func (s *Statistics) DropRate() float64 {
	drops := s.Drops()
	traffic := s.Writes() + drops
	if traffic == 0 {
		return 0.0
	}
	return float64(drops) / float64(traffic)
}

// StatsSummary is a point-in-time snapshot of ring statistics.
type StatsSummary struct {
	Writes      int64   `json:"writes"`
	Reads       int64   `json:"reads"`
	Peeks       int64   `json:"peeks"`
	Overflows   int64   `json:"overflows"`
	Drops       int64   `json:"drops"`
	CurrentSize int64   `json:"current_size"`
	PeakSize    int64   `json:"peak_size"`
	DropRate    float64 `json:"drop_rate"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:      s.Writes(),
		Reads:       s.Reads(),
		Peeks:       s.Peeks(),
		Overflows:   s.Overflows(),
		Drops:       s.Drops(),
		CurrentSize: s.CurrentSize(),
		PeakSize:    s.PeakSize(),
		DropRate:    s.DropRate(),
	}
}

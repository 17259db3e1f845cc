package stats

import (
	"sync/atomic"
	"time"
)

// Stats carries process-wide runtime counters. A single instance is created
// at startup and shared by reference with whichever component updates it.
type Stats struct {
	start     time.Time
	announced atomic.Int64
}

// New initializes the stats at process start.
func New() *Stats {
	return &Stats{start: time.Now()}
}

// RecordAnnounced increments the announced-item counter.
func (s *Stats) RecordAnnounced(n int) {
	if n > 0 {
		s.announced.Add(int64(n))
	}
}

// Announced reports the number of items announced since start.
func (s *Stats) Announced() int64 {
	return s.announced.Load()
}

// Uptime reports time elapsed since process start.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.start)
}

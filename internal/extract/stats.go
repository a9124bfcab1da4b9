package extract

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates recent extraction latencies.
type StatsSnapshot struct {
	Count int     `json:"count"`
	Bytes int64   `json:"bytes"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

type observation struct {
	at         time.Time
	durationMs int64
	bytes      int64
}

// LatencyStats keeps extraction durations from a rolling window.
// At most maxSamples observations are retained; older ones are dropped first.
type LatencyStats struct {
	mu         sync.Mutex
	obs        []observation
	window     time.Duration
	maxSamples int
}

const defaultMaxSamples = 4096

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{
		obs:        make([]observation, 0, 256),
		window:     window,
		maxSamples: defaultMaxSamples,
	}
}

// Record stores one extraction of n input bytes that took durationMs.
// Negative durations are clamped to zero.
func (s *LatencyStats) Record(durationMs, n int64) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)
	if len(s.obs) == s.maxSamples {
		s.obs = slices.Delete(s.obs, 0, 1)
	}
	s.obs = append(s.obs, observation{at: now, durationMs: max(durationMs, 0), bytes: max(n, 0)})
}

// Observe records an extraction of n bytes that started at start.
// A nil receiver is a no-op.
func (s *LatencyStats) Observe(start time.Time, n int64) {
	if s == nil {
		return
	}
	s.Record(time.Since(start).Milliseconds(), n)
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)
	if len(s.obs) == 0 {
		return StatsSnapshot{}
	}

	durations := make([]int64, len(s.obs))
	var total, totalBytes int64
	for i, o := range s.obs {
		durations[i] = o.durationMs
		total += o.durationMs
		totalBytes += o.bytes
	}
	slices.Sort(durations)

	return StatsSnapshot{
		Count: len(durations),
		Bytes: totalBytes,
		MinMs: durations[0],
		MaxMs: durations[len(durations)-1],
		AvgMs: float64(total) / float64(len(durations)),
		P50Ms: interpolate(durations, 50),
		P95Ms: interpolate(durations, 95),
		P99Ms: interpolate(durations, 99),
	}
}

// evictLocked drops observations older than the window. Observations are
// appended in time order, so the expired ones form a prefix.
func (s *LatencyStats) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.obs) && s.obs[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.obs = slices.Delete(s.obs, 0, i)
	}
}

// interpolate returns the pct-th percentile of sorted using linear
// interpolation between the closest ranks.
func interpolate(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}

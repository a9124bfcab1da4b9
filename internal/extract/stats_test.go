package extract

import (
	"testing"
	"time"
)

func TestLatencyStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	for _, ms := range []int64{300, 100, 500, 200, 400} {
		stats.Record(ms, 10)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Bytes != 50 {
		t.Fatalf("expected bytes=50, got %d", snap.Bytes)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencyStatsEvictsExpired(t *testing.T) {
	stats := NewLatencyStats(10 * time.Millisecond)
	stats.Record(100, 1)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after eviction, got %d", snap.Count)
	}

	stats.Record(200, 1)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected single 200ms sample, got %+v", snap)
	}
}

func TestLatencyStatsClampsNegative(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.Record(-10, -3)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.Bytes != 0 {
		t.Fatalf("expected clamped values, got min=%d bytes=%d", snap.MinMs, snap.Bytes)
	}
}

func TestLatencyStatsCapsSamples(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.maxSamples = 3
	for _, ms := range []int64{1, 2, 3, 4} {
		stats.Record(ms, 0)
	}
	snap := stats.Snapshot()
	if snap.Count != 3 || snap.MinMs != 2 {
		t.Fatalf("expected oldest sample dropped, got %+v", snap)
	}
}

func TestLatencyStatsObserveNilReceiver(t *testing.T) {
	var stats *LatencyStats
	stats.Observe(time.Now(), 1)
}

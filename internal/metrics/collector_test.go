package metrics_test

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/reputationlabs/repstress/internal/metrics"
)

func TestSnapshotLatencyStatistics(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordSuccess("a.com", 100*time.Millisecond)
	c.RecordSuccess("b.com", 200*time.Millisecond)
	c.RecordSuccess("c.com", 300*time.Millisecond)

	stats := c.Snapshot(3, time.Second)

	if stats.AvgLatency != 200*time.Millisecond {
		t.Errorf("avg = %v, want 200ms", stats.AvgLatency)
	}
	if stats.MaxLatency != 300*time.Millisecond {
		t.Errorf("max = %v, want 300ms", stats.MaxLatency)
	}
	if stats.Successes != 3 || stats.Errors != 0 {
		t.Errorf("counts = %d/%d, want 3/0", stats.Successes, stats.Errors)
	}
	if stats.ErrorRate != 0 {
		t.Errorf("error rate = %v, want 0", stats.ErrorRate)
	}
}

// Ten samples 1..10: index int(0.9*10) = 9, so the reported value is the
// maximum of the sample. The index formula is load-bearing for report
// compatibility and must not drift toward an interpolating percentile.
func TestSnapshotNinetiethIndexTenSamples(t *testing.T) {
	c := metrics.NewCollector()
	for i := 1; i <= 10; i++ {
		c.RecordSuccess("a.com", time.Duration(i)*time.Millisecond)
	}

	stats := c.Snapshot(10, time.Second)
	if stats.P90Latency != 10*time.Millisecond {
		t.Fatalf("p90 = %v, want 10ms", stats.P90Latency)
	}
}

func TestSnapshotNinetiethIndexTable(t *testing.T) {
	cases := []struct {
		n    int
		want int // expected 1-based rank of the reported sample
	}{
		{1, 1},
		{2, 2},   // int(1.8) = 1 -> second sample
		{5, 5},   // int(4.5) = 4 -> last sample
		{10, 10}, // int(9.0) = 9 -> last sample
		{11, 10}, // int(9.9) = 9 -> tenth sample
		{20, 19}, // int(18.0) = 18
		{100, 91},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d", tc.n), func(t *testing.T) {
			c := metrics.NewCollector()
			for i := 1; i <= tc.n; i++ {
				c.RecordSuccess("a.com", time.Duration(i)*time.Millisecond)
			}
			stats := c.Snapshot(tc.n, time.Second)
			want := time.Duration(tc.want) * time.Millisecond
			if stats.P90Latency != want {
				t.Fatalf("p90 = %v, want %v", stats.P90Latency, want)
			}
		})
	}
}

func TestSnapshotNoSuccessesYieldsZeroStatistics(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordError("a.com", "HTTP 500")
	c.RecordError("b.com", "HTTP 500")

	stats := c.Snapshot(2, time.Second)

	if stats.AvgLatency != 0 || stats.MaxLatency != 0 || stats.P90Latency != 0 {
		t.Errorf("latency stats = %v/%v/%v, want all zero",
			stats.AvgLatency, stats.MaxLatency, stats.P90Latency)
	}
	if stats.ErrorRate != 100 {
		t.Errorf("error rate = %v, want 100", stats.ErrorRate)
	}
	if stats.ErrorsByReason["HTTP 500"] != 2 {
		t.Errorf("errors by reason = %v", stats.ErrorsByReason)
	}
}

// The error percentage denominator is the scheduled count, not the completed
// count, so a run cut short by a deadline still reports against the original
// plan.
func TestSnapshotErrorRateUsesScheduledDenominator(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordSuccess("a.com", time.Millisecond)
	c.RecordError("b.com", "HTTP 503")

	stats := c.Snapshot(10, time.Second)
	if stats.ErrorRate != 10 {
		t.Fatalf("error rate = %v, want 10 (1 error of 10 scheduled)", stats.ErrorRate)
	}
	if stats.Completed != 2 {
		t.Fatalf("completed = %d, want 2", stats.Completed)
	}
}

func TestSnapshotIsIdempotent(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordSuccess("a.com", 50*time.Millisecond)
	c.RecordSuccess("b.com", 150*time.Millisecond)
	c.RecordError("c.com", "timeout")

	first := c.Snapshot(3, 2*time.Second)
	second := c.Snapshot(3, 2*time.Second)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("snapshots differ:\n%+v\n%+v", first, second)
	}
}

func TestSnapshotDistinctTargetsSorted(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordSuccess("zeta.com", time.Millisecond)
	c.RecordError("alpha.com", "HTTP 500")
	c.RecordSuccess("zeta.com", time.Millisecond)

	stats := c.Snapshot(3, time.Second)
	want := []string{"alpha.com", "zeta.com"}
	if !reflect.DeepEqual(stats.DistinctTargets, want) {
		t.Fatalf("targets = %v, want %v", stats.DistinctTargets, want)
	}
}

func TestConcurrentRecording(t *testing.T) {
	const perWorker = 200
	const workers = 8

	c := metrics.NewCollector()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if i%2 == 0 {
					c.RecordSuccess(fmt.Sprintf("t%d.com", w), time.Millisecond)
				} else {
					c.RecordError(fmt.Sprintf("t%d.com", w), "HTTP 500")
				}
			}
		}(w)
	}
	wg.Wait()

	stats := c.Snapshot(workers*perWorker, time.Second)
	if stats.Completed != workers*perWorker {
		t.Fatalf("completed = %d, want %d", stats.Completed, workers*perWorker)
	}
	if stats.Successes != workers*perWorker/2 {
		t.Fatalf("successes = %d, want %d", stats.Successes, workers*perWorker/2)
	}
	if len(stats.DistinctTargets) != workers {
		t.Fatalf("distinct targets = %d, want %d", len(stats.DistinctTargets), workers)
	}
}

package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector accumulates per-request outcomes in a thread-safe manner.
// A single mutex guards all state; request latency dominates lock hold
// time by orders of magnitude, so finer-grained locking buys nothing here.
type Collector struct {
	mu        sync.Mutex
	latencies []time.Duration
	successes int64
	errors    int64
	byReason  map[string]int64
	targets   map[string]struct{}
	hist      *hdrhistogram.Histogram
}

// Stats is a frozen snapshot of a run's aggregate state plus derived
// statistics. After Snapshot returns it is plain data, safe to share.
type Stats struct {
	Scheduled int   `json:"scheduled"`
	Completed int64 `json:"completed"`
	Successes int64 `json:"successes"`
	Errors    int64 `json:"errors"`

	// ErrorRate uses the originally scheduled request count as the
	// denominator even when a deadline cut the run short, so incomplete
	// and failed requests are indistinguishable in the percentage. This
	// matches historical reports and is kept deliberately.
	ErrorRate float64 `json:"error_rate"`

	AvgLatency time.Duration `json:"-"`
	MaxLatency time.Duration `json:"-"`
	P90Latency time.Duration `json:"-"`

	// Supplementary percentiles from the histogram; shown on the console
	// but excluded from the CSV summary to keep its legacy layout.
	P50Latency time.Duration `json:"-"`
	P99Latency time.Duration `json:"-"`

	AvgLatencySec float64 `json:"avg_latency_sec"`
	MaxLatencySec float64 `json:"max_latency_sec"`
	P90LatencySec float64 `json:"p90_latency_sec"`

	DistinctTargets []string         `json:"distinct_targets"`
	ErrorsByReason  map[string]int64 `json:"errors_by_reason,omitempty"`

	Duration    time.Duration `json:"-"`
	DurationSec float64       `json:"duration_sec"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		byReason: make(map[string]int64),
		targets:  make(map[string]struct{}),
		hist:     h,
	}
}

// RecordSuccess folds one successful request into the aggregate.
// Only success latencies participate in the latency statistics.
func (c *Collector) RecordSuccess(target string, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successes++
	c.latencies = append(c.latencies, elapsed)
	c.targets[target] = struct{}{}

	us := elapsed.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)
}

// RecordError folds one failed request into the aggregate, bucketed by reason.
func (c *Collector) RecordError(target string, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors++
	c.byReason[reason]++
	c.targets[target] = struct{}{}
}

// Completed returns how many outcomes have been folded so far.
func (c *Collector) Completed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successes + c.errors
}

// Snapshot computes derived statistics over the current state. It is a pure
// function of that state: calling it twice on a quiescent collector yields
// identical results. scheduled is the originally configured request count.
func (c *Collector) Snapshot(scheduled int, elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Scheduled: scheduled,
		Completed: c.successes + c.errors,
		Successes: c.successes,
		Errors:    c.errors,
		Duration:  elapsed,
	}

	if scheduled > 0 {
		stats.ErrorRate = float64(c.errors) / float64(scheduled) * 100
	}

	if n := len(c.latencies); n > 0 {
		sorted := make([]time.Duration, n)
		copy(sorted, c.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum time.Duration
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatency = sum / time.Duration(n)
		stats.MaxLatency = sorted[n-1]
		stats.P90Latency = sorted[nearestRankIndex(n)]
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.AvgLatencySec = stats.AvgLatency.Seconds()
	stats.MaxLatencySec = stats.MaxLatency.Seconds()
	stats.P90LatencySec = stats.P90Latency.Seconds()
	stats.DurationSec = elapsed.Seconds()

	stats.DistinctTargets = make([]string, 0, len(c.targets))
	for t := range c.targets {
		stats.DistinctTargets = append(stats.DistinctTargets, t)
	}
	sort.Strings(stats.DistinctTargets)

	if len(c.byReason) > 0 {
		stats.ErrorsByReason = make(map[string]int64, len(c.byReason))
		for k, v := range c.byReason {
			stats.ErrorsByReason[k] = v
		}
	}

	return stats
}

// nearestRankIndex returns floor(0.9*n) for a 0-indexed ascending sample.
// This is NOT a standard percentile definition: no interpolation, and the
// formula itself carries no upper clamp. Prior reports were produced with
// exactly this index, so it must not change. The n-1 bound only guards
// against floating-point overshoot and never alters the legacy value.
func nearestRankIndex(n int) int {
	idx := int(0.9 * float64(n))
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// Package metrics provides thread-safe aggregation of per-request outcomes
// for a load-generation run.
//
// The central [Collector] type is the only shared mutable aggregate in the
// system. Workers fold outcomes into it through exactly two atomic
// operations:
//
//	collector.RecordSuccess("a.com", 120*time.Millisecond)
//	collector.RecordError("b.com", "HTTP 500")
//
// Raw counters and sets are never exposed; the only read path is a frozen
// snapshot taken after the worker pool has been joined:
//
//	stats := collector.Snapshot(scheduled, elapsed)
//
// # Percentile semantics
//
// The 90th percentile in [Stats] uses the legacy nearest-rank index
// floor(0.9*n) over the sorted success latencies, with no interpolation,
// for compatibility with previously generated reports. The P50/P99 values
// come from an HDR histogram and are informational only.
package metrics

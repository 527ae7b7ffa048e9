package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/reputationlabs/repstress/internal/metrics"
)

// summaryTrailer closes the summary block, matching reports produced by
// earlier versions of the tool.
const summaryTrailer = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"

// summaryRows builds the summary block rows. The row layout and number
// formatting are kept byte-compatible with historical report files. The
// leading zero-field row stands for the blank line separating audit rows
// from the summary.
func summaryRows(stats metrics.Stats) [][]string {
	return [][]string{
		{},
		{"Summary"},
		{"Total domains tested", strconv.Itoa(len(stats.DistinctTargets))},
		{"All domains that were used", strings.Join(stats.DistinctTargets, ", ")},
		{"Total Requests Made", strconv.Itoa(stats.Scheduled)},
		{"Total Errors", strconv.FormatInt(stats.Errors, 10)},
		{"Error percentage", fmt.Sprintf("%.2f%%", stats.ErrorRate)},
		{"Average Response Time (s)", fmt.Sprintf("%.6f", stats.AvgLatencySec)},
		{"Max Response Time (s)", fmt.Sprintf("%.6f", stats.MaxLatencySec)},
		{"90th Percentile Response Time (s)", fmt.Sprintf("%.6f", stats.P90LatencySec)},
		{"Total Test Time (s)", fmt.Sprintf("%.2f", stats.DurationSec)},
		{summaryTrailer},
	}
}

// writeSummaryRows streams the summary block through cw, falling back to w
// for the blank separator line since csv.Writer refuses zero-field records.
func writeSummaryRows(w io.Writer, cw *csv.Writer, stats metrics.Stats) error {
	for _, row := range summaryRows(stats) {
		if len(row) == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV appends the run summary block to w. Callers sharing w with
// a live AuditWriter must use AuditWriter.WriteSummary instead, which
// serializes against concurrent audit appends.
func WriteSummaryCSV(w io.Writer, stats metrics.Stats) error {
	return writeSummaryRows(w, csv.NewWriter(w), stats)
}

// PrintReport writes a human-readable run summary.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Stress Test Results ---")
	fmt.Fprintf(w, "Scheduled Requests: %d\n", stats.Scheduled)
	fmt.Fprintf(w, "Completed:          %d\n", stats.Completed)
	fmt.Fprintf(w, "Successful:         %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:             %d\n", stats.Errors)
	fmt.Fprintf(w, "Error Rate:         %.2f%%\n", stats.ErrorRate)
	fmt.Fprintf(w, "Domains Tested:     %d\n", len(stats.DistinctTargets))
	fmt.Fprintf(w, "Total Time:         %.2fs\n", stats.DurationSec)
	fmt.Fprintln(w, "\nLatency (successes only):")
	fmt.Fprintf(w, "  Mean:             %.6fs\n", stats.AvgLatencySec)
	fmt.Fprintf(w, "  Max:              %.6fs\n", stats.MaxLatencySec)
	fmt.Fprintf(w, "  P50:              %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:              %.6fs\n", stats.P90LatencySec)
	fmt.Fprintf(w, "  P99:              %s\n", stats.P99Latency)

	if len(stats.ErrorsByReason) > 0 {
		fmt.Fprintln(w, "\nErrors by Reason:")
		for _, reason := range sortedReasons(stats.ErrorsByReason) {
			fmt.Fprintf(w, "  %s: %d\n", reason, stats.ErrorsByReason[reason])
		}
	}
}

// PrintJSONReport writes the stats in JSON form for machine consumption.
func PrintJSONReport(w io.Writer, stats metrics.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func sortedReasons(byReason map[string]int64) []string {
	reasons := make([]string, 0, len(byReason))
	for r := range byReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/reputationlabs/repstress/internal/metrics"
	"github.com/reputationlabs/repstress/internal/runner"
)

var auditHeader = []string{"Iteration", "Domain", "Response Time (s)", "Status", "Response JSON"}

// AuditWriter is an append-only per-request audit trail. All workers write
// through it concurrently; a single mutex serializes the underlying CSV
// stream. It implements runner.AuditSink.
type AuditWriter struct {
	mu sync.Mutex
	w  io.Writer
	cw *csv.Writer
	c  io.Closer
}

// NewAuditWriter wraps w and writes the audit header immediately so a
// partially-written file is still self-describing.
func NewAuditWriter(w io.Writer) (*AuditWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return nil, fmt.Errorf("write audit header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	a := &AuditWriter{w: w, cw: cw}
	if c, ok := w.(io.Closer); ok {
		a.c = c
	}
	return a, nil
}

// Append writes one audit row. Rows are flushed as they arrive so a run cut
// short by a deadline or interrupt keeps its audit trail up to that point.
func (a *AuditWriter) Append(entry runner.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = a.cw.Write([]string{
		fmt.Sprintf("%d", entry.Iteration),
		entry.Target,
		fmt.Sprintf("%.6f", entry.Elapsed.Seconds()),
		entry.Status,
		entry.Detail,
	})
	a.cw.Flush()
}

// WriteSummary appends the run summary block to the audit stream under the
// same lock Append takes. Workers abandoned by a deadline or interrupt may
// still be appending when the summary is written; going through one mutex
// keeps the summary block contiguous, with late rows landing before or after
// it but never inside.
func (a *AuditWriter) WriteSummary(stats metrics.Stats) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return writeSummaryRows(a.w, a.cw, stats)
}

// Err reports the first error the underlying writer hit, if any.
func (a *AuditWriter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cw.Error()
}

// Close flushes pending rows and closes the underlying file when owned.
func (a *AuditWriter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cw.Flush()
	err := a.cw.Error()
	if a.c != nil {
		if cerr := a.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

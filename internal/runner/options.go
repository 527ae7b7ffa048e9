package runner

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/reputationlabs/repstress/internal/catalog"
	"github.com/reputationlabs/repstress/internal/metrics"
)

var (
	ErrNoWorkers    = errors.New("worker count must be >= 1")
	ErrNoRequests   = errors.New("total request count must be >= 1")
	ErrEmptyCatalog = errors.New("target catalog is empty")
	ErrNilRequester = errors.New("requester is required")
)

// AuditEntry is one per-request row for the append-only audit trail.
type AuditEntry struct {
	Iteration int
	Target    string
	Elapsed   time.Duration
	Status    string
	Detail    string
}

// AuditSink receives one entry per completed request. Implementations must
// be safe for concurrent appenders.
type AuditSink interface {
	Append(entry AuditEntry)
}

// Options configure the Coordinator.
type Options struct {
	Workers       int           // number of concurrent workers (required, >= 1)
	TotalRequests int           // tasks to seed (required, >= 1)
	Deadline      time.Duration // global wait bound measured from spawn (0 means wait forever)
	Catalog       *catalog.Catalog
	Requester     Requester
	Collector     *metrics.Collector
	Audit         AuditSink   // optional per-request audit trail
	Logger        *zap.Logger // optional; defaults to a nop logger
}

func (o *Options) normalize() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector()
	}
}

// validate fails fast before any task is seeded or any network activity
// begins. These are the only fatal errors a run can produce.
func (o Options) validate() error {
	if o.Workers < 1 {
		return ErrNoWorkers
	}
	if o.TotalRequests < 1 {
		return ErrNoRequests
	}
	if o.Catalog == nil || o.Catalog.Len() == 0 {
		return ErrEmptyCatalog
	}
	if o.Requester == nil {
		return ErrNilRequester
	}
	return nil
}

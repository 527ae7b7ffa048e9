package output

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
)

// lockName guards a results directory against two runs writing into it at
// the same time.
const lockName = ".repstress.lock"

// NewRunID returns a sortable unique id for one run's artifacts.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ReportPath builds the run-scoped report filename inside dir.
func ReportPath(dir, runID string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("results_%s_%s.csv", stamp, runID))
}

// EnsureDir creates the artifact directory if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

// AcquireLock takes a non-blocking file lock on the results directory.
// A second concurrent run against the same directory fails fast instead of
// interleaving rows into each other's artifacts. Release with Unlock.
func AcquireLock(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock results dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("results dir %s is locked by another run", dir)
	}
	return lock, nil
}

package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reputationlabs/repstress/internal/queue"
)

// Result captures how a run ended. Aggregate statistics live in the
// collector and are snapshotted by the caller after Run returns.
type Result struct {
	Duration         time.Duration
	Popped           int  // tasks handed to workers (== TotalRequests unless cut short)
	DeadlineExceeded bool // global deadline elapsed before the queue drained
	Interrupted      bool // external cancellation (signal) stopped the wait
}

// Coordinator seeds the task queue, spawns the worker pool, enforces the
// global deadline and joins workers for final report computation.
type Coordinator struct {
	opt Options
}

func New(opt Options) *Coordinator {
	opt.normalize()
	return &Coordinator{opt: opt}
}

// Run executes one full load-generation run. The only errors it returns are
// configuration errors raised before any network activity; once seeding has
// happened a run always completes with a usable Result, even when cut short
// by the deadline or by ctx cancellation.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	if err := c.opt.validate(); err != nil {
		return Result{}, err
	}

	q := queue.New()
	for i := 1; i <= c.opt.TotalRequests; i++ {
		q.Push(queue.Task{Iteration: i, Target: c.opt.Catalog.Pick()})
	}
	c.opt.Logger.Info("task queue seeded",
		zap.Int("tasks", c.opt.TotalRequests),
		zap.Int("catalog_size", c.opt.Catalog.Len()))

	stopCtx, stop := context.WithCancel(ctx)
	defer stop()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(c.opt.Workers)
	for i := 0; i < c.opt.Workers; i++ {
		w := &worker{
			id:        i + 1,
			queue:     q,
			requester: c.opt.Requester,
			collector: c.opt.Collector,
			audit:     c.opt.Audit,
			log:       c.opt.Logger,
		}
		go func() {
			defer wg.Done()
			w.run(stopCtx)
		}()
	}
	c.opt.Logger.Info("worker pool started", zap.Int("workers", c.opt.Workers))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var deadlineCh <-chan time.Time
	if c.opt.Deadline > 0 {
		timer := time.NewTimer(c.opt.Deadline)
		defer timer.Stop()
		deadlineCh = timer.C
	}

	var res Result
	select {
	case <-done:
	case <-deadlineCh:
		// Workers mid-call are abandoned, not killed: they finish their
		// current request and their results race best-effort against the
		// snapshot the caller takes next. Accepted behavior.
		res.DeadlineExceeded = true
		c.opt.Logger.Warn("deadline reached before queue drained; finalizing partial results",
			zap.Duration("deadline", c.opt.Deadline))
		stop()
	case <-ctx.Done():
		res.Interrupted = true
		c.opt.Logger.Warn("run interrupted; finalizing partial results")
		stop()
	}

	res.Duration = time.Since(start)
	res.Popped = q.Popped()
	return res, nil
}

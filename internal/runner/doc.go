// Package runner provides the core load-generation engine for repstress.
//
// The runner package orchestrates one full run: it seeds a task queue with
// randomly selected targets, spawns a bounded pool of workers that drain
// the queue, folds every per-request outcome into a shared collector, and
// enforces a global deadline without losing already-collected data.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Workers:       10,
//		TotalRequests: 100,
//		Deadline:      time.Minute,
//		Catalog:       cat,
//		Requester:     myRequester,
//		Collector:     collector,
//	}
//	c := runner.New(opts)
//	result, err := c.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines what a worker executes per task:
//
//	type Requester interface {
//		Do(ctx context.Context, target string) Outcome
//	}
//
// Every call attempt is terminal: it yields exactly one tagged [Outcome]
// (success, HTTP error, transport error or parse error) that is folded
// into the aggregate exactly once. There are no retries.
//
// # Cancellation
//
// Stopping is cooperative. Workers check the stop context between requests
// only; a request already in flight completes before the worker observes
// cancellation. On deadline or interrupt the coordinator stops waiting and
// the caller snapshots whatever the collector holds at that moment.
package runner

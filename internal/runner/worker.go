package runner

import (
	"context"

	"go.uber.org/zap"

	"github.com/reputationlabs/repstress/internal/metrics"
	"github.com/reputationlabs/repstress/internal/queue"
)

// worker drains the task queue one task at a time until the queue is empty
// or the stop context fires. It never returns an error: every failure mode
// of a request becomes a recorded outcome.
type worker struct {
	id        int
	queue     *queue.TaskQueue
	requester Requester
	collector *metrics.Collector
	audit     AuditSink
	log       *zap.Logger
}

func (w *worker) run(ctx context.Context) {
	w.log.Debug("worker starting", zap.Int("worker", w.id))

	for {
		// Cooperative stop: checked between requests only. A call already
		// in flight is allowed to finish; see the WithoutCancel below.
		select {
		case <-ctx.Done():
			w.log.Debug("worker stopping", zap.Int("worker", w.id))
			return
		default:
		}

		task, ok := w.queue.TryPop()
		if !ok {
			w.log.Debug("queue drained", zap.Int("worker", w.id))
			return
		}

		out := w.requester.Do(context.WithoutCancel(ctx), task.Target)
		w.record(task, out)
	}
}

func (w *worker) record(task queue.Task, out Outcome) {
	if out.Kind == KindSuccess {
		w.collector.RecordSuccess(task.Target, out.Elapsed)
		w.log.Debug("request succeeded",
			zap.Int("iteration", task.Iteration),
			zap.String("target", task.Target),
			zap.Duration("elapsed", out.Elapsed))
	} else {
		w.collector.RecordError(task.Target, out.Reason())
		w.log.Error("request failed",
			zap.Int("iteration", task.Iteration),
			zap.String("target", task.Target),
			zap.String("reason", out.Reason()),
			zap.Duration("elapsed", out.Elapsed))
	}

	if w.audit != nil {
		detail := out.Reason()
		if out.Kind == KindSuccess {
			detail = string(out.Payload)
		}
		w.audit.Append(AuditEntry{
			Iteration: task.Iteration,
			Target:    task.Target,
			Elapsed:   out.Elapsed,
			Status:    out.StatusLabel(),
			Detail:    detail,
		})
	}
}

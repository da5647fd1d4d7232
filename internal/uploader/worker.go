package uploader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bryngwalad/inventory/internal/gdrive"
)

type JobProcessor interface {
	Process(ctx context.Context, job Job) error
}

// Worker drains the queue one job at a time. Uploads are strictly
// sequential, so jobs complete in enqueue order; a failing job is logged
// and never stops the loop or triggers a retry.
type Worker struct {
	queue *Queue
	proc  JobProcessor
	log   *slog.Logger
	done  chan struct{}
}

func NewWorker(q *Queue, proc JobProcessor, log *slog.Logger) *Worker {
	return &Worker{queue: q, proc: proc, log: log, done: make(chan struct{})}
}

// Run loops until the queue closes or ctx is canceled. Cancellation is
// honored between jobs only: the in-flight job runs on a detached context
// so shutdown waits for it instead of tearing a half-done upload.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		// Stop takes priority over further queued work.
		select {
		case <-ctx.Done():
			w.log.Info("upload worker stopping")
			return
		default:
		}
		select {
		case <-ctx.Done():
			w.log.Info("upload worker stopping")
			return
		case job, ok := <-w.queue.Jobs():
			if !ok {
				w.log.Info("upload queue closed, worker exiting")
				return
			}
			w.process(context.WithoutCancel(ctx), job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("upload job panicked", "item_id", job.ItemID, "panic", r)
		}
	}()

	if err := w.proc.Process(ctx, job); err != nil {
		var perr *gdrive.PermissionError
		if errors.As(err, &perr) {
			w.log.Error("upload job failed", "item_id", job.ItemID, "error", err, "hint", perr.Hint)
			return
		}
		w.log.Error("upload job failed", "item_id", job.ItemID, "error", err)
	}
}

// Wait blocks until the worker has exited, or grace elapses. Returns
// false on timeout, in which case the in-flight upload keeps running
// detached.
func (w *Worker) Wait(grace time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(grace):
		return false
	}
}

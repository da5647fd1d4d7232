package uploader

import (
	"log/slog"
	"sync"
)

// Queue is the bounded FIFO buffer between request handlers and the
// worker. Enqueue never blocks and never fails back to the caller: when
// the queue is full or closed the job is dropped with a warning, and the
// local image reference already persisted stays authoritative.
type Queue struct {
	jobs chan Job
	log  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewQueue(capacity int, log *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{jobs: make(chan Job, capacity), log: log}
}

func (q *Queue) Enqueue(job Job) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.log.Warn("upload queue closed, dropping job", "item_id", job.ItemID, "path", job.LocalPath)
		return
	}
	select {
	case q.jobs <- job:
		q.log.Info("enqueued upload job", "item_id", job.ItemID, "path", job.LocalPath)
	default:
		q.log.Warn("upload queue full, dropping job", "item_id", job.ItemID, "path", job.LocalPath)
	}
}

// Jobs is the worker's receive side; it is closed by Close.
func (q *Queue) Jobs() <-chan Job { return q.jobs }

// Close stops accepting jobs and lets the worker drain and exit.
// Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

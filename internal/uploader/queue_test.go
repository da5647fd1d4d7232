package uploader_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/bryngwalad/inventory/internal/uploader"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	q := uploader.NewQueue(1, discardLogger())

	// Must return immediately on every call, full or not.
	q.Enqueue(uploader.Job{ItemID: 1})
	q.Enqueue(uploader.Job{ItemID: 2})
	q.Enqueue(uploader.Job{ItemID: 3})

	job, ok := <-q.Jobs()
	if !ok || job.ItemID != 1 {
		t.Fatalf("expected first job to survive, got %+v (ok=%v)", job, ok)
	}
	select {
	case extra := <-q.Jobs():
		t.Fatalf("expected overflow jobs to be dropped, got %+v", extra)
	default:
	}
}

func TestEnqueueAfterCloseIsSafe(t *testing.T) {
	q := uploader.NewQueue(4, discardLogger())
	q.Close()
	q.Close() // idempotent

	// Must not panic or block.
	q.Enqueue(uploader.Job{ItemID: 1})

	if _, ok := <-q.Jobs(); ok {
		t.Fatalf("expected closed channel")
	}
}

func TestQueueIsFIFO(t *testing.T) {
	q := uploader.NewQueue(8, discardLogger())
	for i := int64(1); i <= 5; i++ {
		q.Enqueue(uploader.Job{ItemID: i})
	}
	q.Close()

	var got []int64
	for job := range q.Jobs() {
		got = append(got, job.ItemID)
	}
	for i, id := range got {
		if id != int64(i+1) {
			t.Fatalf("expected FIFO order, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(got))
	}
}

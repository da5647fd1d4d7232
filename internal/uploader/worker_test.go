package uploader_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bryngwalad/inventory/internal/uploader"
)

// scriptedProcessor runs a per-item script and records completion order.
type scriptedProcessor struct {
	mu    sync.Mutex
	fail  map[int64]error
	panic map[int64]bool
	seen  []int64
	done  chan int64
}

func newScriptedProcessor() *scriptedProcessor {
	return &scriptedProcessor{
		fail:  map[int64]error{},
		panic: map[int64]bool{},
		done:  make(chan int64, 16),
	}
}

func (p *scriptedProcessor) Process(_ context.Context, job uploader.Job) error {
	p.mu.Lock()
	p.seen = append(p.seen, job.ItemID)
	p.mu.Unlock()
	p.done <- job.ItemID
	if p.panic[job.ItemID] {
		panic("boom")
	}
	return p.fail[job.ItemID]
}

func (p *scriptedProcessor) waitFor(t *testing.T, itemID int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case id := <-p.done:
			if id == itemID {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for job %d", itemID)
		}
	}
}

func TestWorkerSurvivesFailingAndPanickingJobs(t *testing.T) {
	q := uploader.NewQueue(8, discardLogger())
	proc := newScriptedProcessor()
	proc.panic[1] = true
	proc.fail[2] = errors.New("transport error")

	w := uploader.NewWorker(q, proc, discardLogger())
	go w.Run(context.Background())

	q.Enqueue(uploader.Job{ItemID: 1}) // panics
	q.Enqueue(uploader.Job{ItemID: 2}) // fails
	q.Enqueue(uploader.Job{ItemID: 3}) // succeeds

	proc.waitFor(t, 3)

	proc.mu.Lock()
	got := append([]int64(nil), proc.seen...)
	proc.mu.Unlock()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected all jobs processed in order, got %v", got)
	}

	q.Close()
	if !w.Wait(2 * time.Second) {
		t.Fatalf("worker did not exit after queue close")
	}
}

func TestWorkerExitsOnQueueClose(t *testing.T) {
	q := uploader.NewQueue(4, discardLogger())
	w := uploader.NewWorker(q, newScriptedProcessor(), discardLogger())
	go w.Run(context.Background())

	q.Close()
	if !w.Wait(2 * time.Second) {
		t.Fatalf("worker did not exit after queue close")
	}
}

func TestWorkerExitsOnCancel(t *testing.T) {
	q := uploader.NewQueue(4, discardLogger())
	w := uploader.NewWorker(q, newScriptedProcessor(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	cancel()
	if !w.Wait(2 * time.Second) {
		t.Fatalf("worker did not exit after cancel")
	}
}

func TestWorkerFinishesInFlightJobBeforeStopping(t *testing.T) {
	q := uploader.NewQueue(4, discardLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	proc := processorFunc(func(_ context.Context, job uploader.Job) error {
		close(started)
		<-release
		close(finished)
		return nil
	})

	w := uploader.NewWorker(q, proc, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	q.Enqueue(uploader.Job{ItemID: 1})
	<-started

	// Cancellation arrives mid-job: the worker must let it finish.
	cancel()
	if w.Wait(50 * time.Millisecond) {
		t.Fatalf("worker exited while a job was in flight")
	}

	close(release)
	<-finished
	if !w.Wait(2 * time.Second) {
		t.Fatalf("worker did not exit after in-flight job completed")
	}
}

type processorFunc func(ctx context.Context, job uploader.Job) error

func (f processorFunc) Process(ctx context.Context, job uploader.Job) error { return f(ctx, job) }

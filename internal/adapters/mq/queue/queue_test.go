package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/aimtune/internal/domain/model"
)

func resultJob(id string) Job {
	j := NewJob(OpAppendResult)
	j.Result = model.CalculationResult{ID: id, GameID: "codm"}
	return j
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Capacity(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, resultJob("r1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue(ctx)
	if j.Op != OpAppendResult || j.Result.ID != "r1" {
		t.Errorf("unexpected job %+v", j)
	}
	if j.EnqueuedAt.IsZero() {
		t.Error("expected enqueue time to be set")
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := q.Enqueue(ctx, resultJob(id)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}

	if err := q.Enqueue(ctx, resultJob("r3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, resultJob("r1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	const producers = 10
	const perProducer = 100

	var consumed sync.WaitGroup
	consumed.Add(1)
	count := 0
	go func() {
		defer consumed.Done()
		for range q.Dequeue(ctx) {
			count++
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for n := 0; n < perProducer; n++ {
				for q.Enqueue(ctx, resultJob(fmt.Sprintf("r%d_%d", id, n))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()
	_ = q.Close()
	consumed.Wait()

	if count != producers*perProducer {
		t.Errorf("expected %d jobs, got %d", producers*perProducer, count)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, resultJob("r1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, resultJob("r2")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Pending jobs drain before the channel closes.
	jobs := q.Dequeue(ctx)
	timeout := time.After(time.Second)
	drained := 0
	for {
		select {
		case _, ok := <-jobs:
			if !ok {
				if drained != 1 {
					t.Errorf("expected 1 drained job, got %d", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestJob_Respond(t *testing.T) {
	j := NewJob(OpClear)
	want := errors.New("boom")
	j.Respond(want)
	j.Respond(nil)

	if got := <-j.Reply; !errors.Is(got, want) {
		t.Errorf("expected first response to win, got %v", got)
	}

	var bare Job
	bare.Respond(want)
}

// Package queue carries store write jobs from request handlers to the single
// store writer.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Enqueue failures. The service maps ErrFull to backpressure and ErrClosed
// to a stopped engine.
var (
	ErrFull   = errors.New("queue full")
	ErrClosed = errors.New("queue closed")
)

// Op names the store mutation a job performs.
type Op string

const (
	OpAppendResult   Op = "append_result"
	OpAppendFeedback Op = "append_feedback"
	OpClear          Op = "clear"
)

// Job is one store mutation. The writer sends exactly one value on Reply.
type Job struct {
	Op         Op
	Result     model.CalculationResult
	Feedback   model.FeedbackRecord
	Reply      chan error
	EnqueuedAt time.Time
}

// NewJob creates a job with a buffered reply channel so the writer never
// blocks on a caller that stopped waiting.
func NewJob(op Op) Job {
	return Job{Op: op, Reply: make(chan error, 1), EnqueuedAt: time.Now()}
}

// Respond delivers the outcome of j without blocking. Only the first
// response is kept.
func (j Job) Respond(err error) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- err:
	default:
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It fails with ErrFull or ErrClosed instead of blocking.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel of pending jobs, closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued jobs.
	Capacity() int

	// Close stops accepting jobs. Pending jobs are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the number of pending jobs. Non-positive values keep
// the default.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}

	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateWriterQueueCapacity(q.capacity)
	metrics.UpdateWriterQueueSize(0)
	metrics.UpdateWriterQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordWriterEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordWriterEnqueueError("context_cancelled")
		return err
	}

	select {
	case q.jobs <- j:
		metrics.RecordWriterEnqueue()
		q.updateGauges()
		return nil
	default:
		metrics.RecordWriterEnqueueError("full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the job channel. The writer is the only consumer.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			q.updateGauges()
			select {
			case out <- j:
			case <-ctx.Done():
				j.Respond(ctx.Err())
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.jobs)
}

// Capacity returns the maximum number of queued jobs.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.jobs)
	metrics.UpdateWriterQueueSize(size)
	metrics.UpdateWriterQueueUtilization(float64(size) / float64(q.capacity))
}

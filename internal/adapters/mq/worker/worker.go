// Package worker applies queued store mutations on a single goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/aimtune/internal/adapters/mq/queue"
	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/pkg/logger"
	"github.com/okian/aimtune/pkg/metrics"
)

// ErrUnknownOp is replied for jobs the writer does not understand.
var ErrUnknownOp = errors.New("unknown store operation")

// Store is the mutating half of the storage collaborator.
type Store interface {
	AppendResult(ctx context.Context, r model.CalculationResult) error
	AppendFeedback(ctx context.Context, f model.FeedbackRecord) error
	Clear(ctx context.Context) error
}

// Queue defines how the writer receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
	Close() error
}

// Writer drains the queue and applies each job to the store, one at a time.
// Running exactly one Writer per store serializes all writers.
type Writer struct {
	queue Queue
	store Store
	name  string

	done chan struct{}

	logger logger.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithName names the writer in its log records.
func WithName(name string) Option {
	return func(w *Writer) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the global "writer" logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a writer with configuration options.
func NewWriter(q Queue, store Store, opts ...Option) *Writer {
	w := &Writer{
		queue:  q,
		store:  store,
		name:   "writer",
		done:   make(chan struct{}),
		logger: logger.Get().Named("writer"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "writer" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run applies jobs until the queue is closed and drained, or ctx is done.
// Jobs still queued when ctx ends are answered with the context error.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.apply(ctx, j)
		}
	}
}

// Done is closed once Run has returned.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Shutdown closes the queue and waits for pending jobs to be applied.
func (w *Writer) Shutdown(ctx context.Context) error {
	if err := w.queue.Close(); err != nil {
		w.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Writer) apply(ctx context.Context, j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()

	var err error
	switch j.Op {
	case queue.OpAppendResult:
		err = w.store.AppendResult(ctx, j.Result)
	case queue.OpAppendFeedback:
		err = w.store.AppendFeedback(ctx, j.Feedback)
	case queue.OpClear:
		err = w.store.Clear(ctx)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOp, j.Op)
	}

	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError(string(j.Op))
		metrics.RecordWriterJob(string(j.Op), "error")
		metrics.RecordErrorByComponent("writer", string(j.Op))
		w.logger.Error(ctx, "store write failed",
			logger.String("op", string(j.Op)),
			logger.Error(err),
		)
	} else {
		metrics.RecordWriterJob(string(j.Op), "ok")
		w.logger.Debug(ctx, "store write applied",
			logger.String("op", string(j.Op)),
			logger.Float64("queued_ms", float64(start.Sub(j.EnqueuedAt).Milliseconds())),
		)
	}

	j.Respond(err)
}

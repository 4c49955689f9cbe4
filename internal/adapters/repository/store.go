// Package repository persists calculation results and feedback history.
package repository

import (
	"context"
	"time"

	"github.com/okian/aimtune/internal/domain/model"
)

// Stats summarizes what the store holds.
type Stats struct {
	Calculations    int            `json:"calculations"`
	Feedback        int            `json:"feedback"`
	PerGame         map[string]int `json:"per_game"`
	LastCalculation time.Time      `json:"last_calculation,omitempty"`
}

// Store is the storage collaborator. Writes are expected to arrive from a
// single writer; reads may run concurrently.
type Store interface {
	// AppendResult stores a result. A repeated ID fails with ErrDuplicate.
	AppendResult(ctx context.Context, r model.CalculationResult) error
	// AppendFeedback stores a feedback record. A repeated ID fails with ErrDuplicate.
	AppendFeedback(ctx context.Context, f model.FeedbackRecord) error
	// ReadHistory returns the feedback of one game, oldest first.
	ReadHistory(ctx context.Context, gameID string) ([]model.FeedbackRecord, error)
	// Clear removes every result and feedback record.
	Clear(ctx context.Context) error

	// GetResult returns one result or ErrNotFound.
	GetResult(ctx context.Context, id string) (model.CalculationResult, error)
	// ListResults returns up to limit results, newest first. An empty gameID
	// lists every game. A non-positive limit fails with ErrInvalidLimit.
	ListResults(ctx context.Context, gameID string, limit int) ([]model.CalculationResult, error)
	// Stats reports totals.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/aimtune/internal/domain/model"
)

// MemoryStore keeps results and feedback in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	results    []model.CalculationResult // append order
	resultIdx  map[string]int
	feedback   []model.FeedbackRecord
	feedbackID map[string]struct{}
	maxResults int
	closed     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		resultIdx:  make(map[string]int),
		feedbackID: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) AppendResult(ctx context.Context, r model.CalculationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.resultIdx[r.ID]; ok {
		return fmt.Errorf("%w: result %s", ErrDuplicate, r.ID)
	}
	s.results = append(s.results, cloneResult(r))
	if s.maxResults > 0 && len(s.results) > s.maxResults {
		s.results = append([]model.CalculationResult(nil), s.results[len(s.results)-s.maxResults:]...)
	}
	s.reindex()
	return nil
}

func (s *MemoryStore) reindex() {
	s.resultIdx = make(map[string]int, len(s.results))
	for i, r := range s.results {
		s.resultIdx[r.ID] = i
	}
}

func (s *MemoryStore) AppendFeedback(ctx context.Context, f model.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.feedbackID[f.ID]; ok {
		return fmt.Errorf("%w: feedback %s", ErrDuplicate, f.ID)
	}
	s.feedback = append(s.feedback, f)
	s.feedbackID[f.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) ReadHistory(ctx context.Context, gameID string) ([]model.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	var out []model.FeedbackRecord
	for _, f := range s.feedback {
		if f.GameID == gameID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.results = nil
	s.resultIdx = make(map[string]int)
	s.feedback = nil
	s.feedbackID = make(map[string]struct{})
	return nil
}

func (s *MemoryStore) GetResult(ctx context.Context, id string) (model.CalculationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return model.CalculationResult{}, ErrClosed
	}
	i, ok := s.resultIdx[id]
	if !ok {
		return model.CalculationResult{}, fmt.Errorf("%w: result %s", ErrNotFound, id)
	}
	return cloneResult(s.results[i]), nil
}

func (s *MemoryStore) ListResults(ctx context.Context, gameID string, limit int) ([]model.CalculationResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	matched := make([]model.CalculationResult, 0, limit)
	for i := len(s.results) - 1; i >= 0; i-- {
		if r := s.results[i]; gameID == "" || r.GameID == gameID {
			matched = append(matched, r)
		}
	}
	// Newest first; the later append wins a tie.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]model.CalculationResult, len(matched))
	for i, r := range matched {
		out[i] = cloneResult(r)
	}
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, ErrClosed
	}
	st := Stats{
		Calculations: len(s.results),
		Feedback:     len(s.feedback),
		PerGame:      make(map[string]int),
	}
	for _, r := range s.results {
		st.PerGame[r.GameID]++
		if r.CreatedAt.After(st.LastCalculation) {
			st.LastCalculation = r.CreatedAt
		}
	}
	return st, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cloneResult copies the maps and slices of r so callers cannot alias
// stored state.
func cloneResult(r model.CalculationResult) model.CalculationResult {
	out := r
	out.PerAxisSensitivity = make(map[model.Axis]float64, len(r.PerAxisSensitivity))
	for k, v := range r.PerAxisSensitivity {
		out.PerAxisSensitivity[k] = v
	}
	out.ExplanationFactors = append([]model.ExplanationFactor(nil), r.ExplanationFactors...)
	return out
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/aimtune/internal/domain/types"
)

// FeedbackDependencies defines the interface for feedback submission.
type FeedbackDependencies interface {
	SubmitFeedback(ctx context.Context, in types.FeedbackInput) (types.FeedbackOutcome, error)
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps FeedbackDependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps FeedbackDependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

// HandleFeedback handles POST /v1/feedback requests. A new record answers
// 201, a resubmission answers 200 with duplicate set.
func (h *FeedbackHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var in types.FeedbackInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	out, err := h.deps.SubmitFeedback(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if out.Duplicate {
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

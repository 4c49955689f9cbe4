package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
)

// maxListLimit caps the limit query parameter.
const maxListLimit = 500

// HistoryDependencies defines the interface for stored result and feedback reads.
type HistoryDependencies interface {
	History(ctx context.Context, gameID string) (types.History, error)
	Results(ctx context.Context, gameID string, limit int) (types.ResultList, error)
	Result(ctx context.Context, id string) (model.CalculationResult, error)
	Clear(ctx context.Context) error
}

// HistoryHandler serves stored results and feedback.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleHistory handles GET /v1/history/{game} requests.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.deps.History(r.Context(), chi.URLParam(r, "game"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleResults handles GET /v1/results?game=&limit= requests.
func (h *HistoryHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be an integer in [1, %d]", ErrBadRequest, maxListLimit))
			return
		}
		limit = n
	}

	list, err := h.deps.Results(r.Context(), r.URL.Query().Get("game"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleResult handles GET /v1/results/{id} requests.
func (h *HistoryHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleClear handles DELETE /v1/history requests.
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Clear(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Status: "cleared"})
}

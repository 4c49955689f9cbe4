package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/aimtune/internal/domain/model"
)

// CalculateDependencies defines the interface for calculation.
type CalculateDependencies interface {
	Calculate(ctx context.Context, req model.CalculationRequest) (model.CalculationResult, error)
}

// CalculateHandler handles calculation requests.
type CalculateHandler struct {
	deps CalculateDependencies
}

// NewCalculateHandler creates a new calculate handler.
func NewCalculateHandler(deps CalculateDependencies) *CalculateHandler {
	return &CalculateHandler{deps: deps}
}

// HandleCalculate handles POST /v1/calculate requests.
func (h *CalculateHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req model.CalculationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.GameID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing game_id", ErrBadRequest))
		return
	}

	result, err := h.deps.Calculate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

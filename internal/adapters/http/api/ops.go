package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/pkg/metrics"
)

// StatsProvider reports engine counters for GET /stats.
type StatsProvider interface {
	GetStats(ctx context.Context) (types.Stats, error)
}

// OpsHandler serves the operational endpoints: the Prometheus exposition on
// /healthz and the engine counters on /stats.
type OpsHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

// NewOpsHandler creates an OpsHandler backed by the engine metrics registry.
func NewOpsHandler(stats StatsProvider) *OpsHandler {
	return &OpsHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

func (h *OpsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

func (h *OpsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

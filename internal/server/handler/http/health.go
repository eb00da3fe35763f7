package http

import (
	"context"
	"net/http"
	"time"

	"github.com/moogar0880/problems"
	"go.uber.org/zap"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	Storage Pinger
	Log     *zap.Logger
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Storage.Ping(ctx); err != nil {
		h.Log.Warn("storage ping failed", zap.Error(err))
		writeProblem(w, http.StatusServiceUnavailable, problems.NewStatusProblem(http.StatusServiceUnavailable).
			WithInstance(r.URL.Path).
			WithType("storage_unavailable").
			WithDetail("storage is unreachable"))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

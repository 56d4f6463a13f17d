package handler

import (
	"net/http"
	"time"

	"github.com/andeanlabs/pagoflow/infra/response"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	startedAt time.Time
	simulated func() bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(simulated func() bool) *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
		simulated: simulated,
	}
}

// Health reports service liveness and the payment mode.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	mode := "live"
	if h.simulated != nil && h.simulated() {
		mode = "simulated"
	}

	response.Success(w, http.StatusOK, "OK", map[string]any{
		"status":         "healthy",
		"mode":           mode,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

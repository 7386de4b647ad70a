// File: internal/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports whether the upstream model server is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Name() string
}

type HealthHandler struct {
	upstream HealthChecker
	timeout  time.Duration
}

func NewHealthHandler(upstream HealthChecker, timeout time.Duration) *HealthHandler {
	return &HealthHandler{upstream: upstream, timeout: timeout}
}

// Health answers OK while the server runs. With ?upstream=1 it also probes
// the model server and reports 503 when that fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("upstream") == "" || h.upstream == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.upstream.HealthCheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"upstream": h.upstream.Name(),
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "upstream": h.upstream.Name()})
}

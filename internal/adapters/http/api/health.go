// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/leadsplit/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service can take traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	metrics http.Handler
	ready   ReadinessChecker
}

// NewHealthHandler creates a new health handler. A nil checker is always ready.
func NewHealthHandler(ready ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		ready:   ready,
	}
}

// HandleHealth handles GET /healthz by exposing the Prometheus registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleAPIHealth handles GET /api/health. It answers 503 {"ok":false}
// while the service is stopped or its store is unreachable.
func (h *HealthHandler) HandleAPIHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.ready != nil {
		if err := h.ready.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

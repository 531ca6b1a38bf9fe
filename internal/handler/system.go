package handler

import (
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/pixelshield/portal-api/internal/infra/observability"
)

// healthzHandler reports process liveness plus the breaker state of each
// outbound backend. An open breaker shows up here before it shows up as
// failing requests.
func healthzHandler(breakers map[string]*gobreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backends := make(map[string]string, len(breakers))
		healthy := true
		for name, cb := range breakers {
			state := strings.ToLower(cb.State().String())
			backends[name] = state
			if cb.State() == gobreaker.StateOpen {
				healthy = false
			}
		}

		status := "healthy"
		if !healthy {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":       healthy,
			"status":   status,
			"backends": backends,
		})
	}
}

// readyzHandler reports readiness. The portal holds no warm-up state beyond
// its wiring, so ready follows liveness; the endpoint exists so deployments
// can still gate on it.
func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"status": "ready",
		})
	}
}

// portalMetricsHandler handles GET /v1/metrics/portal: the counter snapshot
// shown on the staff dashboard.
func portalMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"metrics": metrics.GetPortalSnapshot(),
		})
	}
}

package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth    *service.AuthService
	Clients *service.ClientService
	Leads   *service.LeadService
	Metrics *observability.Metrics
	Logger  *zap.Logger

	// Breakers maps backend names to their circuit breakers for /healthz.
	Breakers map[string]*gobreaker.CircuitBreaker

	// AllowedOrigins is a comma-separated origin list for CORS; "*" allows
	// any origin, which is the right default for a public marketing site.
	AllowedOrigins string
}

// NewRouter builds the portal API router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(deps.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(requestCounterMiddleware(deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(deps.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Portal endpoints.
	r.Post("/login", loginHandler(deps.Auth, deps.Logger))
	r.Post("/staff-login", staffLoginHandler(deps.Auth, deps.Logger))
	r.Get("/admin-client-info", adminClientInfoHandler(deps.Clients, deps.Logger))
	r.Post("/update-client", updateClientHandler(deps.Clients, deps.Logger))
	r.Get("/leads", listLeadsHandler(deps.Leads, deps.Logger))
	r.Post("/leads", createLeadHandler(deps.Leads, deps.Logger))

	// Operational endpoints.
	r.Get("/healthz", healthzHandler(deps.Breakers))
	r.Get("/readyz", readyzHandler())
	r.Get("/v1/metrics/portal", portalMetricsHandler(deps.Metrics))
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	return r
}

// requestCounterMiddleware counts every request as success or error by
// status class. 4xx counts as error: for this API a 4xx is a failed
// operation, not a routing artifact.
func requestCounterMiddleware(metrics *observability.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= 400 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return []string{"*"}
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

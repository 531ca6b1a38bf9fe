package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storageErrors   *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	loginsTotal     *prometheus.CounterVec
	leadsTotal      prometheus.Counter
}

// PortalSnapshot is a point-in-time view of the portal counters, served by
// GET /v1/metrics/portal for the staff dashboard.
type PortalSnapshot struct {
	TotalRequests    float64 `json:"total_requests"`
	FailedRequests   float64 `json:"failed_requests"`
	ClientLogins     float64 `json:"client_logins"`
	StaffLogins      float64 `json:"staff_logins"`
	LeadsReceived    float64 `json:"leads_received"`
	BackendFallbacks float64 `json:"backend_fallbacks"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_storage_errors_total",
				Help: "Total errors from storage backends.",
			},
			[]string{"backend"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_backend_fallback_total",
				Help: "Total reads answered by the fallback backend.",
			},
			[]string{"reason"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_logins_total",
				Help: "Total successful logins by portal kind.",
			},
			[]string{"kind"},
		),
		leadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_leads_total",
				Help: "Total leads accepted from the order form.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStorageError increments the storage error counter for a backend.
func (m *Metrics) IncrStorageError(backend string) {
	m.storageErrors.WithLabelValues(backend).Inc()
}

// IncrFallback counts a read answered by the fallback backend.
func (m *Metrics) IncrFallback(reason string) {
	m.fallbacks.WithLabelValues(reason).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrLogin counts a successful login ("client" or "staff").
func (m *Metrics) IncrLogin(kind string) {
	m.loginsTotal.WithLabelValues(kind).Inc()
}

// IncrLead counts an accepted lead.
func (m *Metrics) IncrLead() {
	m.leadsTotal.Inc()
}

// GetPortalSnapshot returns a snapshot of portal counters suitable for the
// GET /v1/metrics/portal endpoint.
func (m *Metrics) GetPortalSnapshot() *PortalSnapshot {
	return &PortalSnapshot{
		TotalRequests:    getCounterValue(m.requestsTotal, "success") + getCounterValue(m.requestsTotal, "error"),
		FailedRequests:   getCounterValue(m.requestsTotal, "error"),
		ClientLogins:     getCounterValue(m.loginsTotal, "client"),
		StaffLogins:      getCounterValue(m.loginsTotal, "staff"),
		LeadsReceived:    getSingleCounterValue(m.leadsTotal),
		BackendFallbacks: getVecTotal(m.fallbacks),
	}
}

// getCounterValue reads the current value of one label combination.
func getCounterValue(vec *prometheus.CounterVec, labels ...string) float64 {
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

func getSingleCounterValue(c prometheus.Counter) float64 {
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// getVecTotal sums all label combinations of a counter vec.
func getVecTotal(vec *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		vec.Collect(ch)
		close(ch)
	}()
	var total float64
	for m := range ch {
		var metric dto.Metric
		if err := m.Write(&metric); err == nil {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

// Package resilience provides the fault-tolerance wrapper for outbound
// backend calls: a circuit breaker that fails fast when a backend is down.
//
// There is deliberately no retry helper. A failed portal action surfaces
// immediately to the caller and is retried only by the user re-triggering
// the action.
package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pixelshield/portal-api/internal/domain"
)

// NewCircuitBreaker creates a circuit breaker with sensible defaults.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// Execute runs fn through the breaker and normalizes gobreaker's open/limit
// errors into domain.ErrCircuitOpen so callers can treat "backend
// unreachable" uniformly.
func Execute(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: cb.Name()}
	}
	return err
}

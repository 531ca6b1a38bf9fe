// Package service implements the portal use cases on top of the storage
// ports: credential authentication with backend fallback, client record
// listing and updates, and the append-only lead log.
package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/port"
)

var tracer = otel.Tracer("service")

// AuthService authenticates client and staff accounts.
//
// Client lookups run against the primary backend first; when the primary has
// no matching row or is unreachable, the fallback backend answers instead.
// Either backend may be nil when not configured, but never both.
type AuthService struct {
	primary  port.ClientRecordBackend
	fallback port.ClientRecordBackend
	staff    port.StaffStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewAuthService(primary, fallback port.ClientRecordBackend, staff port.StaffStore, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		primary:  primary,
		fallback: fallback,
		staff:    staff,
		metrics:  metrics,
		logger:   logger,
	}
}

// LoginClient authenticates a client by exact email+password match and
// returns the sanitized record. Valid credentials on an account whose
// authorized flag is explicitly false yield ErrAccountDisabled — the record
// is never returned in that case.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "AuthService.LoginClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("client_login", time.Since(start)) }()

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &domain.ErrValidation{Message: "email and password are required"}
	}

	client, err := s.findClient(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &domain.ErrUnauthorized{Message: "Credenciales inválidas"}
	}
	if !client.IsAuthorized() {
		s.logger.Warn("login rejected: account disabled", zap.String("email", email))
		return nil, &domain.ErrAccountDisabled{Email: email}
	}

	s.metrics.IncrLogin("client")
	return client.Sanitized(), nil
}

// findClient runs the primary-then-fallback lookup chain. A primary miss and
// a primary failure both route to the fallback; fallback errors are final.
func (s *AuthService) findClient(ctx context.Context, email, password string) (*domain.Client, error) {
	if s.primary != nil {
		client, err := s.primary.FindByCredentials(ctx, email, password)
		switch {
		case err == nil && client != nil:
			return client, nil
		case err == nil:
			// No matching row in the primary; the flat data may still
			// hold the account.
			if s.fallback == nil {
				return nil, nil
			}
			s.metrics.IncrFallback("primary_miss")
		default:
			if s.fallback == nil {
				return nil, err
			}
			s.logger.Warn("primary backend unreachable, consulting fallback",
				zap.String("email", email),
				zap.Error(err),
			)
			s.metrics.IncrFallback("primary_error")
		}
	}
	if s.fallback == nil {
		return nil, &domain.ErrStorage{Backend: "none", Err: errNoBackend}
	}
	return s.fallback.FindByCredentials(ctx, email, password)
}

// LoginStaff authenticates an internal staff account. No fallback chain and
// no authorization flag: the row either matches or it does not. The whole
// row is returned, matching the staff portal contract.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*domain.StaffAccount, error) {
	ctx, span := tracer.Start(ctx, "AuthService.LoginStaff")
	defer span.End()
	span.SetAttributes(attribute.String("staff.email", email))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("staff_login", time.Since(start)) }()

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &domain.ErrValidation{Message: "email and password are required"}
	}
	if s.staff == nil {
		return nil, &domain.ErrStorage{Backend: "none", Err: errNoBackend}
	}

	account, err := s.staff.FindStaffByCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.ErrUnauthorized{Message: "Credenciales inválidas"}
	}

	s.metrics.IncrLogin("staff")
	return account, nil
}

type noBackendError struct{}

func (noBackendError) Error() string { return "no client record backend configured" }

var errNoBackend = noBackendError{}

package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/port"
)

// ClientService reads and updates client records. Unlike authentication, it
// talks to exactly one backend, chosen at startup: the primary when
// configured, the fallback otherwise. Updates never switch backends mid-write.
type ClientService struct {
	backend port.ClientRecordBackend
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewClientService(backend port.ClientRecordBackend, metrics *observability.Metrics, logger *zap.Logger) *ClientService {
	return &ClientService{backend: backend, metrics: metrics, logger: logger}
}

// ListAll returns every client record, unsanitized. Only the staff endpoint
// calls this; the staff dashboard shows passwords and authorization flags.
func (s *ClientService) ListAll(ctx context.Context) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "ClientService.ListAll")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("list_clients", time.Since(start)) }()

	return s.backend.ListAll(ctx)
}

// Update applies the allow-listed subset of updates to the record matching
// email and returns the sanitized post-update record. Unknown keys are
// dropped silently, never an error.
func (s *ClientService) Update(ctx context.Context, email string, updates map[string]any) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "ClientService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("update_client", time.Since(start)) }()

	if strings.TrimSpace(email) == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if updates == nil {
		return nil, &domain.ErrValidation{Field: "updates", Message: "must be an object"}
	}

	filtered := filterUpdates(updates)
	if dropped := len(updates) - len(filtered); dropped > 0 {
		s.logger.Debug("dropped non-updatable fields",
			zap.String("email", email),
			zap.Int("dropped", dropped),
		)
	}

	updated, err := s.backend.Update(ctx, email, filtered)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// filterUpdates keeps only the allow-listed client fields.
func filterUpdates(updates map[string]any) map[string]any {
	filtered := make(map[string]any, len(updates))
	for _, field := range domain.UpdatableClientFields {
		if v, ok := updates[field]; ok {
			filtered[field] = v
		}
	}
	return filtered
}

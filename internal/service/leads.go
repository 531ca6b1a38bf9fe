package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/port"
)

// LeadInput is what the public order form submits. Company is the only
// optional field.
type LeadInput struct {
	Plan    string `json:"plan"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// LeadService appends inquiries to the lead log and lists them for the staff
// dashboard. The log is append-only: no update or delete exists anywhere.
type LeadService struct {
	store   port.LeadStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewLeadService(store port.LeadStore, metrics *observability.Metrics, logger *zap.Logger) *LeadService {
	return &LeadService{store: store, metrics: metrics, logger: logger}
}

// Append validates and stores one inquiry, assigning it an ID and creation
// timestamp, and returns the stored lead.
func (s *LeadService) Append(ctx context.Context, in LeadInput) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "LeadService.Append")
	defer span.End()
	span.SetAttributes(attribute.String("lead.plan", in.Plan))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("append_lead", time.Since(start)) }()

	for field, value := range map[string]string{
		"plan":  in.Plan,
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, &domain.ErrValidation{Field: field, Message: "required"}
		}
	}

	if s.store == nil {
		return nil, &domain.ErrStorage{Backend: "none", Err: errNoBackend}
	}

	lead := &domain.Lead{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Plan:      in.Plan,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
	}

	if err := s.store.InsertLead(ctx, lead); err != nil {
		return nil, err
	}

	s.metrics.IncrLead()
	s.logger.Info("lead received",
		zap.String("plan", lead.Plan),
		zap.String("email", lead.Email),
	)
	return lead, nil
}

// ListAll returns all inquiries, most recent first.
func (s *LeadService) ListAll(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "LeadService.ListAll")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("list_leads", time.Since(start)) }()

	if s.store == nil {
		return nil, &domain.ErrStorage{Backend: "none", Err: errNoBackend}
	}

	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/resilience"
)

const leadsTable = "leads"

// leadInsert is the write shape for the leads table. ID and created_at are
// filled by the service so the listing order is deterministic even when the
// table has no default.
type leadInsert struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Plan      string `json:"plan"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company,omitempty"`
}

// InsertLead appends one inquiry to the leads table.
func (c *Client) InsertLead(ctx context.Context, lead *domain.Lead) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.plan", lead.Plan))

	err := resilience.Execute(c.cb, func() error {
		row := leadInsert{
			ID:        lead.ID,
			CreatedAt: lead.CreatedAt,
			Plan:      lead.Plan,
			Name:      lead.Name,
			Email:     lead.Email,
			Phone:     lead.Phone,
			Company:   lead.Company,
		}
		_, err := c.doPost(ctx, leadsTable, []leadInsert{row})
		return err
	})
	if err != nil {
		return &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	return nil
}

// ListLeads returns all inquiries, most recent first.
func (c *Client) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeads")
	defer span.End()

	var leads []domain.Lead
	err := resilience.Execute(c.cb, func() error {
		body, err := c.doGet(ctx, leadsTable+"?select=*&order=created_at.desc")
		if err != nil {
			return err
		}

		leads = []domain.Lead{}
		if err := json.Unmarshal(body, &leads); err != nil {
			return fmt.Errorf("failed to decode leads: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	return leads, nil
}

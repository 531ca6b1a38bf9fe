package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/resilience"
)

const staffTable = "staff_users"

// FindStaffByCredentials looks up a staff account by exact email+password
// match. Returns (nil, nil) when no row matches — staff accounts have no
// authorization flag beyond the row existing.
func (c *Client) FindStaffByCredentials(ctx context.Context, email, password string) (*domain.StaffAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindStaffByCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("staff.email", email))

	var staff *domain.StaffAccount
	err := resilience.Execute(c.cb, func() error {
		path := fmt.Sprintf("%s?email=eq.%s&password=eq.%s&limit=1",
			staffTable, url.QueryEscape(email), url.QueryEscape(password))
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}

		var rows []domain.StaffAccount
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode staff rows: %w", err)
		}
		if len(rows) > 0 {
			staff = &rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	return staff, nil
}

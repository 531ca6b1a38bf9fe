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

const clientsTable = "clients"

// clientRow maps the clients table columns to our domain. Text columns are
// nullable in the table, hence the pointers.
type clientRow struct {
	Email          string            `json:"email"`
	Password       string            `json:"password,omitempty"`
	Authorized     *bool             `json:"authorized,omitempty"`
	Name           *string           `json:"name,omitempty"`
	BillingAddress *string           `json:"billing_address,omitempty"`
	PhoneNumber    *string           `json:"phone_number,omitempty"`
	Purchases      []domain.Purchase `json:"purchases"`
	Payments       []domain.Payment  `json:"payments"`
}

func (r *clientRow) toDomain() *domain.Client {
	c := &domain.Client{
		Email:      r.Email,
		Password:   r.Password,
		Authorized: r.Authorized,
		Purchases:  r.Purchases,
		Payments:   r.Payments,
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.BillingAddress != nil {
		c.BillingAddress = *r.BillingAddress
	}
	if r.PhoneNumber != nil {
		c.PhoneNumber = *r.PhoneNumber
	}
	c.Normalize()
	return c
}

// clientColumns maps the allow-listed camelCase update keys to table columns.
var clientColumns = map[string]string{
	"name":           "name",
	"billingAddress": "billing_address",
	"phoneNumber":    "phone_number",
	"purchases":      "purchases",
	"payments":       "payments",
	"authorized":     "authorized",
}

// translateColumns renames camelCase keys to their table column names.
// Keys without a known column are dropped here as a second line of defense;
// the service layer has already allow-listed them.
func translateColumns(updates map[string]any) map[string]any {
	out := make(map[string]any, len(updates))
	for k, v := range updates {
		if col, ok := clientColumns[k]; ok {
			out[col] = v
		}
	}
	return out
}

// FindByCredentials looks up a client by exact email+password match.
// Returns (nil, nil) when no row matches.
func (c *Client) FindByCredentials(ctx context.Context, email, password string) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindByCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	var row *clientRow
	err := resilience.Execute(c.cb, func() error {
		path := fmt.Sprintf("%s?email=eq.%s&password=eq.%s&limit=1",
			clientsTable, url.QueryEscape(email), url.QueryEscape(password))
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}

		var rows []clientRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode client rows: %w", err)
		}
		if len(rows) > 0 {
			row = &rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	return row.toDomain(), nil
}

// ListAll returns every client record, for the staff dashboard.
func (c *Client) ListAll(ctx context.Context) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllClients")
	defer span.End()

	var clients []domain.Client
	err := resilience.Execute(c.cb, func() error {
		body, err := c.doGet(ctx, clientsTable+"?select=*&order=email.asc")
		if err != nil {
			return err
		}

		var rows []clientRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode client rows: %w", err)
		}

		clients = make([]domain.Client, 0, len(rows))
		for i := range rows {
			clients = append(clients, *rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	return clients, nil
}

// Update issues a partial update scoped by exact email match and returns the
// post-update record reshaped back to the domain. The updates map must
// already be allow-listed; keys are translated to column names here.
func (c *Client) Update(ctx context.Context, email string, updates map[string]any) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	cols := translateColumns(updates)
	if len(cols) == 0 {
		// Nothing to write: return the current record unchanged.
		return c.getByEmail(ctx, email)
	}

	var row *clientRow
	err := resilience.Execute(c.cb, func() error {
		path := fmt.Sprintf("%s?email=eq.%s", clientsTable, url.QueryEscape(email))
		body, err := c.doPatch(ctx, path, cols)
		if err != nil {
			return err
		}

		var rows []clientRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode updated client: %w", err)
		}
		if len(rows) > 0 {
			row = &rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	if row == nil {
		return nil, &domain.ErrNotFound{Resource: "client", ID: email}
	}
	return row.toDomain(), nil
}

func (c *Client) getByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var row *clientRow
	err := resilience.Execute(c.cb, func() error {
		path := fmt.Sprintf("%s?email=eq.%s&limit=1", clientsTable, url.QueryEscape(email))
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}

		var rows []clientRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode client rows: %w", err)
		}
		if len(rows) > 0 {
			row = &rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Err: err}
	}
	if row == nil {
		return nil, &domain.ErrNotFound{Resource: "client", ID: email}
	}
	return row.toDomain(), nil
}

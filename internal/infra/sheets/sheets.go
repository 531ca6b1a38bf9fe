// Package sheets implements the spreadsheet fallback backend for client
// records over the Google Sheets values API.
//
// The sheet is loaded in full and linear-scanned; the expected layout is a
// header row with the columns email, password, authorized, name,
// billingAddress, phoneNumber, purchases, payments (matched
// case-insensitively), where the purchases and payments cells hold JSON
// array strings.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/infra/resilience"
	"github.com/pixelshield/portal-api/internal/port"
)

var tracer = otel.Tracer("sheets")

const defaultBaseURL = "https://sheets.googleapis.com"

// valuesCacheKey is the single cache entry for the loaded cell grid.
const valuesCacheKey = "values"

// Store is a port.ClientRecordBackend backed by one Google Sheet tab.
type Store struct {
	httpClient *http.Client
	baseURL    string
	sheetID    string
	apiKey     string
	cellRange  string
	cb         *gobreaker.CircuitBreaker
	cache      port.Cache[[][]string]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewStore creates a sheet-backed client record store. The cache holds the
// loaded cell grid for a short TTL and is invalidated on every update so the
// portal reads its own writes.
func NewStore(httpClient *http.Client, sheetID, apiKey, cellRange string, cb *gobreaker.CircuitBreaker, cache port.Cache[[][]string], metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		sheetID:    sheetID,
		apiKey:     apiKey,
		cellRange:  cellRange,
		cb:         cb,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// WithBaseURL overrides the API host. Used by tests.
func (s *Store) WithBaseURL(u string) *Store {
	s.baseURL = u
	return s
}

// headerIndex locates the expected columns in the (lowercased, trimmed)
// header row. email and password are mandatory; the rest is optional.
type headerIndex struct {
	email, password, authorized, name, address, phone, purchases, payments int
}

func indexHeaders(header []string) (headerIndex, error) {
	idx := headerIndex{email: -1, password: -1, authorized: -1, name: -1, address: -1, phone: -1, purchases: -1, payments: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "email":
			idx.email = i
		case "password":
			idx.password = i
		case "authorized":
			idx.authorized = i
		case "name":
			idx.name = i
		case "billingaddress":
			idx.address = i
		case "phonenumber":
			idx.phone = i
		case "purchases":
			idx.purchases = i
		case "payments":
			idx.payments = i
		}
	}
	if idx.email == -1 || idx.password == -1 {
		return idx, fmt.Errorf("sheet is missing required headers 'email' and 'password'")
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// rowToClient converts one data row into a client record. Broken JSON in the
// purchases/payments cells degrades to an empty list with a logged error
// rather than failing the whole load.
func (s *Store) rowToClient(row []string, idx headerIndex) *domain.Client {
	c := &domain.Client{
		Email:       strings.TrimSpace(cell(row, idx.email)),
		Password:    strings.TrimSpace(cell(row, idx.password)),
		Name:        cell(row, idx.name),
		PhoneNumber: cell(row, idx.phone),
	}
	c.BillingAddress = cell(row, idx.address)

	if raw := cell(row, idx.purchases); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Purchases); err != nil {
			s.logger.Error("sheets: failed to parse purchases cell",
				zap.String("email", c.Email),
				zap.Error(err),
			)
			c.Purchases = nil
		}
	}
	if raw := cell(row, idx.payments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Payments); err != nil {
			s.logger.Error("sheets: failed to parse payments cell",
				zap.String("email", c.Email),
				zap.Error(err),
			)
			c.Payments = nil
		}
	}

	// The authorized column is truthy ("true"/"yes"/"1"); any other
	// non-empty value disables the account. Absent means authorized.
	if raw := strings.ToLower(strings.TrimSpace(cell(row, idx.authorized))); idx.authorized != -1 && raw != "" {
		authorized := raw == "true" || raw == "yes" || raw == "1"
		c.Authorized = &authorized
	}

	c.Normalize()
	return c
}

// loadValues fetches the configured range as a cell grid, through the cache.
func (s *Store) loadValues(ctx context.Context) ([][]string, error) {
	if values, ok := s.cache.Get(valuesCacheKey); ok {
		s.metrics.IncrCacheHit("sheet_values")
		return values, nil
	}
	s.metrics.IncrCacheMiss("sheet_values")

	var values [][]string
	err := resilience.Execute(s.cb, func() error {
		u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
			s.baseURL, s.sheetID, url.PathEscape(s.cellRange), url.QueryEscape(s.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sheets API returned %d: %s", resp.StatusCode, string(body))
		}

		var payload struct {
			Values [][]string `json:"values"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("failed to decode sheet values: %w", err)
		}
		values = payload.Values
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(valuesCacheKey, values)
	return values, nil
}

// loadClients parses the grid into client records. A sheet without a header
// row and at least the required columns is malformed — a hard error, not
// "no matching credentials".
func (s *Store) loadClients(ctx context.Context) ([]domain.Client, headerIndex, [][]string, error) {
	values, err := s.loadValues(ctx)
	if err != nil {
		return nil, headerIndex{}, nil, err
	}
	if len(values) < 1 {
		return nil, headerIndex{}, nil, fmt.Errorf("sheet has no header row")
	}

	idx, err := indexHeaders(values[0])
	if err != nil {
		return nil, headerIndex{}, nil, err
	}

	clients := make([]domain.Client, 0, len(values)-1)
	for _, row := range values[1:] {
		c := s.rowToClient(row, idx)
		if c.Email == "" || c.Password == "" {
			continue
		}
		clients = append(clients, *c)
	}
	return clients, idx, values, nil
}

// FindByCredentials linear-scans the sheet for an exact email+password
// match. Returns (nil, nil) when nothing matches.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Sheets.FindByCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	clients, _, _, err := s.loadClients(ctx)
	if err != nil {
		s.metrics.IncrStorageError("sheets")
		return nil, &domain.ErrStorage{Backend: "sheets", Err: err}
	}
	for i := range clients {
		if clients[i].Email == email && clients[i].Password == password {
			return &clients[i], nil
		}
	}
	return nil, nil
}

// ListAll returns every record parsed from the sheet.
func (s *Store) ListAll(ctx context.Context) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Sheets.ListAll")
	defer span.End()

	clients, _, _, err := s.loadClients(ctx)
	if err != nil {
		s.metrics.IncrStorageError("sheets")
		return nil, &domain.ErrStorage{Backend: "sheets", Err: err}
	}
	return clients, nil
}

// Update merges the allow-listed fields into the matching row and writes the
// whole row back over the same column span, preserving untouched cells.
//
// The load-merge-write is not atomic: concurrent updates through this
// backend can clobber each other. The primary backend does not share this
// weakness.
func (s *Store) Update(ctx context.Context, email string, updates map[string]any) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Sheets.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	_, idx, values, err := s.loadClients(ctx)
	if err != nil {
		s.metrics.IncrStorageError("sheets")
		return nil, &domain.ErrStorage{Backend: "sheets", Err: err}
	}

	rowIndex := -1
	for i := 1; i < len(values); i++ {
		if strings.TrimSpace(cell(values[i], idx.email)) == email {
			rowIndex = i
			break
		}
	}
	if rowIndex == -1 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: email}
	}

	numCols := len(values[0])
	row := make([]string, numCols)
	copy(row, values[rowIndex])

	setCell := func(i int, v string) {
		if i >= 0 && i < numCols {
			row[i] = v
		}
	}

	for key, value := range updates {
		switch key {
		case "name":
			setCell(idx.name, stringValue(value))
		case "billingAddress":
			setCell(idx.address, stringValue(value))
		case "phoneNumber":
			setCell(idx.phone, stringValue(value))
		case "purchases":
			encoded, err := json.Marshal(orEmptyArray(value))
			if err != nil {
				return nil, &domain.ErrValidation{Field: "purchases", Message: "not serializable"}
			}
			setCell(idx.purchases, string(encoded))
		case "payments":
			encoded, err := json.Marshal(orEmptyArray(value))
			if err != nil {
				return nil, &domain.ErrValidation{Field: "payments", Message: "not serializable"}
			}
			setCell(idx.payments, string(encoded))
		case "authorized":
			// Stored as TRUE/FALSE strings, the spreadsheet convention.
			if truthy, ok := value.(bool); ok && truthy {
				setCell(idx.authorized, "TRUE")
			} else {
				setCell(idx.authorized, "FALSE")
			}
		}
	}

	if err := s.writeRow(ctx, rowIndex, numCols, row); err != nil {
		s.metrics.IncrStorageError("sheets")
		return nil, &domain.ErrStorage{Backend: "sheets", Err: err}
	}

	// Drop the cached grid so the next read sees this write.
	s.cache.Delete(valuesCacheKey)

	return s.rowToClient(row, idx), nil
}

// writeRow PUTs one row back over its original column span.
func (s *Store) writeRow(ctx context.Context, rowIndex, numCols int, row []string) error {
	sheetName := s.cellRange
	if i := strings.Index(sheetName, "!"); i >= 0 {
		sheetName = sheetName[:i]
	}

	// Column index to letter; the layout stays under 26 columns.
	colLetter := func(n int) string { return string(rune('A' + n)) }
	targetRange := fmt.Sprintf("%s!%s%d:%s%d",
		sheetName, colLetter(0), rowIndex+1, colLetter(numCols-1), rowIndex+1)

	return resilience.Execute(s.cb, func() error {
		u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED&key=%s",
			s.baseURL, s.sheetID, url.PathEscape(targetRange), url.QueryEscape(s.apiKey))

		payload, err := json.Marshal(map[string]any{"values": [][]string{row}})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			s.logger.Warn("sheets: row update failed",
				zap.String("range", targetRange),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return fmt.Errorf("sheets API update returned %d", resp.StatusCode)
		}

		s.logger.Debug("sheets: row updated", zap.String("range", targetRange))
		return nil
	})
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func orEmptyArray(v any) any {
	if v == nil {
		return []any{}
	}
	return v
}

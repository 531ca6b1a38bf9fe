// Package flatfile implements the local JSON fallback backend for client
// records. The file holds a single JSON array of client objects and is the
// backend of last resort when neither the primary store nor the spreadsheet
// is configured.
package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
)

var tracer = otel.Tracer("flatfile")

// Store is a port.ClientRecordBackend backed by one JSON file. A mutex
// serializes writers within this process; it does not protect against other
// processes editing the file, which is acceptable for the deployment this
// backend targets.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// load reads and parses the whole record set. A missing, unreadable or
// non-array file is malformed fallback data and therefore a hard error.
func (s *Store) load() ([]domain.Client, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client data file: %w", err)
	}

	var clients []domain.Client
	if err := json.Unmarshal(raw, &clients); err != nil {
		return nil, fmt.Errorf("client data file is not a JSON array: %w", err)
	}
	for i := range clients {
		clients[i].Normalize()
	}
	return clients, nil
}

// FindByCredentials linear-scans the file for an exact email+password match.
// Returns (nil, nil) when nothing matches.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (*domain.Client, error) {
	_, span := tracer.Start(ctx, "FlatFile.FindByCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	clients, err := s.load()
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "flatfile", Err: err}
	}
	for i := range clients {
		if clients[i].Email == email && clients[i].Password == password {
			return &clients[i], nil
		}
	}
	return nil, nil
}

// ListAll returns every record in the file.
func (s *Store) ListAll(ctx context.Context) ([]domain.Client, error) {
	_, span := tracer.Start(ctx, "FlatFile.ListAll")
	defer span.End()

	clients, err := s.load()
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "flatfile", Err: err}
	}
	return clients, nil
}

// Update merges the allow-listed fields into the matching record and rewrites
// the whole file. The read-merge-write runs under the store mutex, so
// concurrent updates through this process are safe; concurrent editors of the
// file itself are not.
func (s *Store) Update(ctx context.Context, email string, updates map[string]any) (*domain.Client, error) {
	_, span := tracer.Start(ctx, "FlatFile.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.email", email))

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load()
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "flatfile", Err: err}
	}

	index := -1
	for i := range clients {
		if clients[i].Email == email {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: email}
	}

	merged, err := applyUpdates(&clients[index], updates)
	if err != nil {
		return nil, err
	}
	clients[index] = *merged

	encoded, err := json.MarshalIndent(clientsToFile(clients), "", "  ")
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "flatfile", Err: err}
	}
	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		s.logger.Error("flatfile: failed to write client data file",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, &domain.ErrStorage{Backend: "flatfile", Err: err}
	}

	s.logger.Debug("flatfile: client updated", zap.String("email", email))
	out := *merged
	return &out, nil
}

// applyUpdates merges the allow-listed fields into a copy of the record.
// Values arrive as decoded JSON, so slices are remarshalled through the
// domain types to validate their shape.
func applyUpdates(current *domain.Client, updates map[string]any) (*domain.Client, error) {
	merged := *current
	for key, value := range updates {
		switch key {
		case "name":
			merged.Name = stringValue(value)
		case "billingAddress":
			merged.BillingAddress = stringValue(value)
		case "phoneNumber":
			merged.PhoneNumber = stringValue(value)
		case "purchases":
			var purchases []domain.Purchase
			if err := reshape(value, &purchases); err != nil {
				return nil, &domain.ErrValidation{Field: "purchases", Message: "not a purchase list"}
			}
			merged.Purchases = purchases
		case "payments":
			var payments []domain.Payment
			if err := reshape(value, &payments); err != nil {
				return nil, &domain.ErrValidation{Field: "payments", Message: "not a payment list"}
			}
			merged.Payments = payments
		case "authorized":
			authorized, ok := value.(bool)
			if !ok {
				return nil, &domain.ErrValidation{Field: "authorized", Message: "must be a boolean"}
			}
			merged.Authorized = &authorized
		}
	}
	merged.Normalize()
	return &merged, nil
}

// reshape marshals a decoded-JSON value back through the target type.
func reshape(value any, target any) error {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// fileClient is the on-disk shape: identical to the domain record but with
// the password and authorized flag always serialized, since this file IS the
// credential store.
type fileClient struct {
	Email          string            `json:"email"`
	Password       string            `json:"password"`
	Authorized     *bool             `json:"authorized,omitempty"`
	Name           string            `json:"name,omitempty"`
	BillingAddress string            `json:"billingAddress,omitempty"`
	PhoneNumber    string            `json:"phoneNumber,omitempty"`
	Purchases      []domain.Purchase `json:"purchases"`
	Payments       []domain.Payment  `json:"payments"`
}

func clientsToFile(clients []domain.Client) []fileClient {
	out := make([]fileClient, 0, len(clients))
	for _, c := range clients {
		out = append(out, fileClient{
			Email:          c.Email,
			Password:       c.Password,
			Authorized:     c.Authorized,
			Name:           c.Name,
			BillingAddress: c.BillingAddress,
			PhoneNumber:    c.PhoneNumber,
			Purchases:      c.Purchases,
			Payments:       c.Payments,
		})
	}
	return out
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

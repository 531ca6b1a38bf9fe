package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/service"
)

func TestClientsListAll_ReturnsUnsanitizedRecords(t *testing.T) {
	backend := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123", Authorized: boolPtr(true)},
	}}
	svc := service.NewClientService(backend, observability.NewMetrics(), zap.NewNop())

	clients, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The staff dashboard shows credentials, so the listing keeps them.
	if clients[0].Password != "secret123" {
		t.Errorf("expected unsanitized records for staff, got %+v", clients[0])
	}
}

func TestClientsUpdate_FiltersToAllowList(t *testing.T) {
	backend := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123", Name: "Ana"},
	}}
	svc := service.NewClientService(backend, observability.NewMetrics(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "ana@gmail.com", map[string]any{
		"name":     "Ana Updated",
		"email":    "evil@attacker.com",
		"password": "hacked",
		"id":       "42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown and dangerous keys are dropped silently.
	if _, ok := backend.lastUpdates["email"]; ok {
		t.Error("email must never reach the backend as an update")
	}
	if _, ok := backend.lastUpdates["password"]; ok {
		t.Error("password must never reach the backend as an update")
	}
	if backend.lastUpdates["name"] != "Ana Updated" {
		t.Errorf("allow-listed key lost: %v", backend.lastUpdates)
	}

	if updated.Name != "Ana Updated" {
		t.Errorf("expected post-update record, got %+v", updated)
	}
	if updated.Password != "" {
		t.Error("update response must be sanitized")
	}
}

func TestClientsUpdate_AuthorizedFlagPassesThrough(t *testing.T) {
	backend := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123"},
	}}
	svc := service.NewClientService(backend, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Update(context.Background(), "ana@gmail.com", map[string]any{"authorized": false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.lastUpdates["authorized"] != false {
		t.Errorf("authorized is staff-updatable and must pass through: %v", backend.lastUpdates)
	}
}

func TestClientsUpdate_Validation(t *testing.T) {
	svc := service.NewClientService(&fakeBackend{}, observability.NewMetrics(), zap.NewNop())

	var validation *domain.ErrValidation
	if _, err := svc.Update(context.Background(), "", map[string]any{"name": "X"}); !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation for empty email, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "ana@gmail.com", nil); !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation for nil updates, got %v", err)
	}
}

func TestClientsUpdate_UnknownEmail(t *testing.T) {
	svc := service.NewClientService(&fakeBackend{}, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Update(context.Background(), "nobody@gmail.com", map[string]any{"name": "X"})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %T: %v", err, err)
	}
}

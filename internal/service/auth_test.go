package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/port"
	"github.com/pixelshield/portal-api/internal/service"
)

// newAuthService wires fakes into the service, taking care not to wrap nil
// pointers into non-nil interfaces.
func newAuthService(primary, fallback *fakeBackend, staff *fakeStaffStore) *service.AuthService {
	var p, f port.ClientRecordBackend
	if primary != nil {
		p = primary
	}
	if fallback != nil {
		f = fallback
	}
	var s port.StaffStore
	if staff != nil {
		s = staff
	}
	return service.NewAuthService(p, f, s, observability.NewMetrics(), zap.NewNop())
}

func TestLoginClient_PrimaryMatch(t *testing.T) {
	primary := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123", Name: "Ana"},
	}}
	fallback := &fakeBackend{}
	svc := newAuthService(primary, fallback, nil)

	client, err := svc.LoginClient(context.Background(), "ana@gmail.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Name != "Ana" {
		t.Errorf("expected Ana, got %+v", client)
	}
	if client.Password != "" {
		t.Error("returned record must not carry the password")
	}
	if client.Authorized != nil {
		t.Error("returned record must not carry the authorized flag")
	}
	if fallback.findCalls != 0 {
		t.Error("fallback must not be consulted on a primary match")
	}
}

func TestLoginClient_FallbackOnPrimaryMiss(t *testing.T) {
	primary := &fakeBackend{}
	fallback := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123", Name: "Ana"},
	}}
	svc := newAuthService(primary, fallback, nil)

	client, err := svc.LoginClient(context.Background(), "ana@gmail.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Name != "Ana" {
		t.Errorf("expected fallback record, got %+v", client)
	}
	if primary.findCalls != 1 || fallback.findCalls != 1 {
		t.Errorf("expected primary then fallback, got %d/%d calls", primary.findCalls, fallback.findCalls)
	}
}

func TestLoginClient_FallbackOnPrimaryError(t *testing.T) {
	primary := &fakeBackend{fail: true}
	fallback := &fakeBackend{clients: []domain.Client{
		{Email: "ana@gmail.com", Password: "secret123", Name: "Ana"},
	}}
	svc := newAuthService(primary, fallback, nil)

	client, err := svc.LoginClient(context.Background(), "ana@gmail.com", "secret123")
	if err != nil {
		t.Fatalf("expected fallback to absorb the primary failure, got %v", err)
	}
	if client.Name != "Ana" {
		t.Errorf("expected fallback record, got %+v", client)
	}
}

func TestLoginClient_BothMissIsUnauthorized(t *testing.T) {
	svc := newAuthService(&fakeBackend{}, &fakeBackend{}, nil)

	_, err := svc.LoginClient(context.Background(), "nobody@gmail.com", "whatever")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %T: %v", err, err)
	}
	if unauthorized.Message != "Credenciales inválidas" {
		t.Errorf("unexpected message: %q", unauthorized.Message)
	}
}

func TestLoginClient_DisabledAccountIsForbidden(t *testing.T) {
	primary := &fakeBackend{clients: []domain.Client{
		{Email: "blocked@gmail.com", Password: "secret123", Authorized: boolPtr(false)},
	}}
	svc := newAuthService(primary, &fakeBackend{}, nil)

	_, err := svc.LoginClient(context.Background(), "blocked@gmail.com", "secret123")
	var disabled *domain.ErrAccountDisabled
	if !errors.As(err, &disabled) {
		t.Fatalf("expected ErrAccountDisabled, got %T: %v", err, err)
	}
}

func TestLoginClient_DisabledInFallbackToo(t *testing.T) {
	fallback := &fakeBackend{clients: []domain.Client{
		{Email: "blocked@gmail.com", Password: "secret123", Authorized: boolPtr(false)},
	}}
	svc := newAuthService(nil, fallback, nil)

	_, err := svc.LoginClient(context.Background(), "blocked@gmail.com", "secret123")
	var disabled *domain.ErrAccountDisabled
	if !errors.As(err, &disabled) {
		t.Fatalf("the authorization gate must also cover fallback hits, got %T: %v", err, err)
	}
}

func TestLoginClient_FallbackErrorIsFinal(t *testing.T) {
	svc := newAuthService(&fakeBackend{}, &fakeBackend{fail: true}, nil)

	_, err := svc.LoginClient(context.Background(), "ana@gmail.com", "secret123")
	var storage *domain.ErrStorage
	if !errors.As(err, &storage) {
		t.Fatalf("expected ErrStorage from broken fallback, got %T: %v", err, err)
	}
}

func TestLoginClient_PrimaryErrorWithoutFallbackIsFinal(t *testing.T) {
	svc := newAuthService(&fakeBackend{fail: true}, nil, nil)

	_, err := svc.LoginClient(context.Background(), "ana@gmail.com", "secret123")
	var storage *domain.ErrStorage
	if !errors.As(err, &storage) {
		t.Fatalf("expected ErrStorage, got %T: %v", err, err)
	}
}

func TestLoginClient_MissingCredentials(t *testing.T) {
	svc := newAuthService(&fakeBackend{}, nil, nil)

	for _, tc := range []struct{ email, password string }{
		{"", "secret123"},
		{"ana@gmail.com", ""},
		{"   ", "secret123"},
	} {
		_, err := svc.LoginClient(context.Background(), tc.email, tc.password)
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("expected ErrValidation for %q/%q, got %T: %v", tc.email, tc.password, err, err)
		}
	}
}

func TestLoginStaff(t *testing.T) {
	staff := &fakeStaffStore{accounts: []domain.StaffAccount{
		{ID: "1", Email: "admin@pixelshield.es", Password: "admin123", Name: "Admin"},
	}}
	svc := newAuthService(&fakeBackend{}, nil, staff)

	account, err := svc.LoginStaff(context.Background(), "admin@pixelshield.es", "admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The staff contract returns the whole row, password included.
	if account.Password != "admin123" {
		t.Errorf("expected full staff row, got %+v", account)
	}

	_, err = svc.LoginStaff(context.Background(), "admin@pixelshield.es", "wrong")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %T: %v", err, err)
	}
}

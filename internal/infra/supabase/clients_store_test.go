package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/infra/resilience"
	"github.com/pixelshield/portal-api/internal/infra/supabase"
)

func newTestClient(t *testing.T, handler http.Handler) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return supabase.NewClient(
		srv.Client(), srv.URL, "anon-key", "service-key",
		resilience.NewCircuitBreaker("supabase-test"),
		zap.NewNop(),
	)
}

func TestFindByCredentials_QueryAndHeaders(t *testing.T) {
	var gotPath, gotQuery, apikey, authz string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		apikey = r.Header.Get("apikey")
		authz = r.Header.Get("Authorization")
		w.Write([]byte(`[{"email":"ana@gmail.com","password":"secret123","name":"Ana Torres","purchases":null,"payments":[]}]`))
	}))

	found, err := client.FindByCredentials(context.Background(), "ana@gmail.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/rest/v1/clients" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "email=eq.ana%40gmail.com&password=eq.secret123&limit=1" {
		t.Errorf("query = %q", gotQuery)
	}
	if apikey != "anon-key" || authz != "Bearer service-key" {
		t.Errorf("auth headers = %q / %q", apikey, authz)
	}

	if found == nil || found.Name != "Ana Torres" {
		t.Fatalf("record = %+v", found)
	}
	// Null purchases come back as an empty array, never nil.
	if found.Purchases == nil || len(found.Purchases) != 0 {
		t.Errorf("purchases = %v", found.Purchases)
	}
}

func TestFindByCredentials_NoRowIsNilNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	found, err := client.FindByCredentials(context.Background(), "nobody@gmail.com", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected (nil, nil), got %+v", found)
	}
}

func TestFindByCredentials_UpstreamErrorIsStorageError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unavailable"}`, http.StatusServiceUnavailable)
	}))

	_, err := client.FindByCredentials(context.Background(), "ana@gmail.com", "secret123")
	var storage *domain.ErrStorage
	if !errors.As(err, &storage) {
		t.Fatalf("expected ErrStorage, got %T: %v", err, err)
	}
	if storage.Backend != "supabase" {
		t.Errorf("backend = %q", storage.Backend)
	}
}

func TestUpdate_TranslatesColumnsAndScopes(t *testing.T) {
	var method, query, prefer string
	var patch map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		query = r.URL.RawQuery
		prefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&patch)
		w.Write([]byte(`[{"email":"ana@gmail.com","billing_address":"Avenida Nueva 7","purchases":[],"payments":[]}]`))
	}))

	updated, err := client.Update(context.Background(), "ana@gmail.com", map[string]any{
		"billingAddress": "Avenida Nueva 7",
		"phoneNumber":    "+34 611 111 111",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if method != http.MethodPatch {
		t.Errorf("method = %q", method)
	}
	if query != "email=eq.ana%40gmail.com" {
		t.Errorf("query = %q", query)
	}
	if prefer != "return=representation" {
		t.Errorf("Prefer = %q", prefer)
	}
	if patch["billing_address"] != "Avenida Nueva 7" || patch["phone_number"] != "+34 611 111 111" {
		t.Errorf("patch body = %v", patch)
	}
	if updated.BillingAddress != "Avenida Nueva 7" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdate_ZeroRowsIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := client.Update(context.Background(), "nobody@gmail.com", map[string]any{"name": "X"})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %T: %v", err, err)
	}
}

func TestFindStaffByCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/staff_users" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"1","email":"admin@pixelshield.es","password":"admin123","name":"Admin"}]`))
	}))

	account, err := client.FindStaffByCredentials(context.Background(), "admin@pixelshield.es", "admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account == nil || account.Password != "admin123" {
		t.Errorf("expected the full staff row, got %+v", account)
	}
}

func TestLeads_InsertAndList(t *testing.T) {
	var postBody []map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/leads" {
			t.Errorf("path = %q", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPost:
			json.NewDecoder(r.Body).Decode(&postBody)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[]`))
		case http.MethodGet:
			if r.URL.Query().Get("order") != "created_at.desc" {
				t.Errorf("order = %q", r.URL.Query().Get("order"))
			}
			w.Write([]byte(`[{"id":"l2","plan":"plugin"},{"id":"l1","plan":"chatbot"}]`))
		}
	}))

	err := client.InsertLead(context.Background(), &domain.Lead{
		ID: "l1", CreatedAt: "2025-03-15T12:00:00Z", Plan: "chatbot",
		Name: "Ana", Email: "ana@gmail.com", Phone: "+34 600 000 001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postBody) != 1 || postBody[0]["plan"] != "chatbot" || postBody[0]["created_at"] != "2025-03-15T12:00:00Z" {
		t.Errorf("insert body = %v", postBody)
	}

	leads, err := client.ListLeads(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 || leads[0].ID != "l2" {
		t.Errorf("leads = %+v", leads)
	}
}

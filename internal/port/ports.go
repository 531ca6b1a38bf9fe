// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/pixelshield/portal-api/internal/domain"
)

// ClientRecordBackend is a persistence backend for client records. Two
// variants exist: the Supabase table store (primary) and the flat-data
// fallbacks (Google Sheet or local JSON file). The variant in use is picked
// by configuration at startup, never per call.
//
// FindByCredentials returns (nil, nil) when no row matches both email and
// password exactly — the caller decides whether that means "consult the
// fallback" or "invalid credentials". Errors mean the backend itself failed.
type ClientRecordBackend interface {
	FindByCredentials(ctx context.Context, email, password string) (*domain.Client, error)
	ListAll(ctx context.Context) ([]domain.Client, error)

	// Update applies the already allow-listed fields to the record matching
	// email and returns the updated record. The flat-data implementations
	// rewrite the whole record set; see their docs for the concurrency
	// caveat. Returns domain.ErrNotFound when no record matches.
	Update(ctx context.Context, email string, updates map[string]any) (*domain.Client, error)
}

// StaffStore authenticates internal staff accounts.
type StaffStore interface {
	// FindStaffByCredentials returns (nil, nil) when no row matches.
	FindStaffByCredentials(ctx context.Context, email, password string) (*domain.StaffAccount, error)
}

// LeadStore is the append-only log of inbound sales inquiries.
type LeadStore interface {
	InsertLead(ctx context.Context, lead *domain.Lead) error
	// ListLeads returns leads ordered by creation time, most recent first.
	ListLeads(ctx context.Context) ([]domain.Lead, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

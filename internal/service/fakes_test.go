package service_test

import (
	"context"
	"errors"

	"github.com/pixelshield/portal-api/internal/domain"
)

// fakeBackend is an in-memory port.ClientRecordBackend for tests. Setting
// fail makes every call return a storage error, simulating an unreachable
// backend.
type fakeBackend struct {
	clients []domain.Client
	fail    bool

	findCalls   int
	updateCalls int
	lastUpdates map[string]any
}

var errBackendDown = errors.New("backend down")

func (f *fakeBackend) FindByCredentials(_ context.Context, email, password string) (*domain.Client, error) {
	f.findCalls++
	if f.fail {
		return nil, &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	for i := range f.clients {
		if f.clients[i].Email == email && f.clients[i].Password == password {
			c := f.clients[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) ListAll(context.Context) ([]domain.Client, error) {
	if f.fail {
		return nil, &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	return f.clients, nil
}

func (f *fakeBackend) Update(_ context.Context, email string, updates map[string]any) (*domain.Client, error) {
	f.updateCalls++
	f.lastUpdates = updates
	if f.fail {
		return nil, &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	for i := range f.clients {
		if f.clients[i].Email == email {
			if name, ok := updates["name"].(string); ok {
				f.clients[i].Name = name
			}
			if authorized, ok := updates["authorized"].(bool); ok {
				f.clients[i].Authorized = &authorized
			}
			c := f.clients[i]
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "client", ID: email}
}

type fakeStaffStore struct {
	accounts []domain.StaffAccount
	fail     bool
}

func (f *fakeStaffStore) FindStaffByCredentials(_ context.Context, email, password string) (*domain.StaffAccount, error) {
	if f.fail {
		return nil, &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	for i := range f.accounts {
		if f.accounts[i].Email == email && f.accounts[i].Password == password {
			a := f.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

type fakeLeadStore struct {
	leads []domain.Lead
	fail  bool
}

func (f *fakeLeadStore) InsertLead(_ context.Context, lead *domain.Lead) error {
	if f.fail {
		return &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	// Prepend: most recent first, like the real stores order their listing.
	f.leads = append([]domain.Lead{*lead}, f.leads...)
	return nil
}

func (f *fakeLeadStore) ListLeads(context.Context) ([]domain.Lead, error) {
	if f.fail {
		return nil, &domain.ErrStorage{Backend: "fake", Err: errBackendDown}
	}
	return f.leads, nil
}

func boolPtr(b bool) *bool { return &b }

package portal

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/service"
)

// Dashboard is the staff portal's working set: every client record and every
// lead, loaded together after a staff login.
type Dashboard struct {
	Clients []domain.Client `json:"clients"`
	Leads   []domain.Lead   `json:"leads"`
}

// StaffSession drives the staff portal: login, the dashboard load, and the
// mutually exclusive client/lead detail selection.
type StaffSession struct {
	auth    *service.AuthService
	clients *service.ClientService
	leads   *service.LeadService
	logger  *zap.Logger

	mu             sync.Mutex
	account        *domain.StaffAccount
	dashboard      *Dashboard
	selectedClient *domain.Client
	selectedLead   *domain.Lead
}

func NewStaffSession(auth *service.AuthService, clients *service.ClientService, leads *service.LeadService, logger *zap.Logger) *StaffSession {
	return &StaffSession{
		auth:    auth,
		clients: clients,
		leads:   leads,
		logger:  logger,
	}
}

// Login authenticates the staff account.
func (s *StaffSession) Login(ctx context.Context, email, password string) error {
	account, err := s.auth.LoginStaff(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.account = account
	s.dashboard = nil
	s.selectedClient = nil
	s.selectedLead = nil
	s.mu.Unlock()
	return nil
}

// LoggedIn reports whether a staff login succeeded.
func (s *StaffSession) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account != nil
}

// Account returns a copy of the logged-in staff row, or nil.
func (s *StaffSession) Account() *domain.StaffAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil
	}
	out := *s.account
	return &out
}

// LoadDashboard fetches clients and leads in parallel. Either list failing
// degrades to an empty list with a logged warning instead of blanking the
// whole dashboard — the staff UI stays usable with whatever loaded.
func (s *StaffSession) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	s.mu.Unlock()

	dashboard := &Dashboard{
		Clients: []domain.Client{},
		Leads:   []domain.Lead{},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients, err := s.clients.ListAll(ctx)
		if err != nil {
			s.logger.Warn("dashboard: client list unavailable", zap.Error(err))
			return nil
		}
		dashboard.Clients = clients
		return nil
	})
	g.Go(func() error {
		leads, err := s.leads.ListAll(ctx)
		if err != nil {
			s.logger.Warn("dashboard: lead list unavailable", zap.Error(err))
			return nil
		}
		dashboard.Leads = leads
		return nil
	})
	// The goroutines swallow their errors, so Wait only synchronizes.
	_ = g.Wait()

	s.mu.Lock()
	s.dashboard = dashboard
	s.mu.Unlock()
	return dashboard, nil
}

// SelectClient opens a client's detail view and closes any lead detail.
func (s *StaffSession) SelectClient(email string) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil || s.dashboard == nil {
		return nil, ErrNoSession
	}

	for i := range s.dashboard.Clients {
		if s.dashboard.Clients[i].Email == email {
			s.selectedClient = &s.dashboard.Clients[i]
			s.selectedLead = nil
			out := s.dashboard.Clients[i]
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "client", ID: email}
}

// SelectLead opens a lead's detail view and closes any client detail.
func (s *StaffSession) SelectLead(id string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil || s.dashboard == nil {
		return nil, ErrNoSession
	}

	for i := range s.dashboard.Leads {
		if s.dashboard.Leads[i].ID == id {
			s.selectedLead = &s.dashboard.Leads[i]
			s.selectedClient = nil
			out := s.dashboard.Leads[i]
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "lead", ID: id}
}

// Selection returns the open detail views. At most one is non-nil.
func (s *StaffSession) Selection() (*domain.Client, *domain.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedClient, s.selectedLead
}

// Logout drops the session and everything loaded under it.
func (s *StaffSession) Logout() {
	s.mu.Lock()
	s.account = nil
	s.dashboard = nil
	s.selectedClient = nil
	s.selectedLead = nil
	s.mu.Unlock()
}

// Package portal implements the stateful session flows behind the client
// and staff portals: login state, profile editing, payment method
// registration and the staff dashboard selection model.
package portal

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/service"
)

// ErrNoSession is returned by operations that require a logged-in session.
var ErrNoSession = errors.New("no active session")

// ClientSession drives one client's portal state. Not safe for concurrent
// use by multiple goroutines without the internal mutex, which it has.
type ClientSession struct {
	auth    *service.AuthService
	clients *service.ClientService
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *domain.Client
}

func NewClientSession(auth *service.AuthService, clients *service.ClientService, logger *zap.Logger) *ClientSession {
	return &ClientSession{
		auth:    auth,
		clients: clients,
		logger:  logger,
		now:     time.Now,
	}
}

// Login authenticates and loads the client record into the session.
//
// The portal only issues accounts on gmail.com, so other domains are
// rejected locally before any backend call is made.
func (s *ClientSession) Login(ctx context.Context, email, password string) error {
	if !strings.HasSuffix(strings.ToLower(email), "@gmail.com") {
		return &domain.ErrValidation{Field: "email", Message: "Por favor usa tu correo de Gmail"}
	}

	client, err := s.auth.LoginClient(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = client
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the logged-in record, or nil.
func (s *ClientSession) Current() *domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// LoggedIn reports whether a login succeeded and Logout has not been called.
func (s *ClientSession) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// SaveProfile persists the editable contact fields and refreshes the
// session from the record the backend returns.
func (s *ClientSession) SaveProfile(ctx context.Context, name, billingAddress, phoneNumber string) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	email := s.current.Email
	s.mu.Unlock()

	updated, err := s.clients.Update(ctx, email, map[string]any{
		"name":           name,
		"billingAddress": billingAddress,
		"phoneNumber":    phoneNumber,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()
	return nil
}

// AddPayment registers a payment method and persists the full payment list.
// Card numbers are masked before anything is stored: only the last four
// digits survive, as "<method> ****1234".
//
// On a failed write the session's payment list is left as it was, so the UI
// never shows a method the backend does not have.
func (s *ClientSession) AddPayment(ctx context.Context, method, details string) (*domain.Payment, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	email := s.current.Email
	prior := s.current.Payments
	s.mu.Unlock()

	if strings.TrimSpace(method) == "" {
		return nil, &domain.ErrValidation{Field: "method", Message: "required"}
	}
	if strings.TrimSpace(details) == "" {
		return nil, &domain.ErrValidation{Field: "details", Message: "required"}
	}

	payment := domain.Payment{
		ID:          strconv.FormatInt(s.now().UnixMilli(), 10),
		Date:        s.now().Format("02/01/2006"),
		Description: maskPaymentDescription(method, details),
		Amount:      0,
		Status:      domain.PaymentStatusActive,
	}

	payments := make([]domain.Payment, 0, len(prior)+1)
	payments = append(payments, prior...)
	payments = append(payments, payment)

	updated, err := s.clients.Update(ctx, email, map[string]any{"payments": payments})
	if err != nil {
		s.logger.Warn("payment method not persisted",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()
	return &payment, nil
}

// maskPaymentDescription builds the stored description. Card methods keep
// only the last four digits of the number; for every other method the
// details never reach storage at all — only the method name is kept, so
// account identifiers stay out of the backend.
func maskPaymentDescription(method, details string) string {
	lower := strings.ToLower(method)
	if strings.Contains(lower, "tarjeta") || strings.Contains(lower, "card") {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, details)
		last4 := "XXXX"
		if len(digits) >= 4 {
			last4 = digits[len(digits)-4:]
		}
		return method + " ****" + last4
	}
	return method
}

// CancelPayment flips a payment method to cancelled in the session only.
// The cancellation is deliberately not persisted: the stored list keeps the
// method active, and the change is gone after Logout.
func (s *ClientSession) CancelPayment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoSession
	}

	for i := range s.current.Payments {
		if s.current.Payments[i].ID == id {
			s.current.Payments[i].Status = domain.PaymentStatusCancelled
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "payment", ID: id}
}

// Logout drops the session state.
func (s *ClientSession) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

package domain_test

import (
	"testing"

	"github.com/pixelshield/portal-api/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestSanitized_StripsCredentials(t *testing.T) {
	c := &domain.Client{
		Email:      "ana@gmail.com",
		Password:   "secret123",
		Authorized: boolPtr(true),
		Name:       "Ana Torres",
	}

	s := c.Sanitized()
	if s.Password != "" || s.Authorized != nil {
		t.Errorf("sanitized record still carries credentials: %+v", s)
	}
	if s.Purchases == nil || s.Payments == nil {
		t.Error("sanitized slices must be non-nil")
	}
	// The source record is untouched.
	if c.Password != "secret123" || c.Authorized == nil {
		t.Errorf("source record mutated: %+v", c)
	}
}

func TestSanitized_CopiesSlices(t *testing.T) {
	c := &domain.Client{
		Email: "ana@gmail.com",
		Payments: []domain.Payment{
			{ID: "100", Description: "PayPal", Status: domain.PaymentStatusActive},
		},
		Purchases: []domain.Purchase{
			{ID: "p1", Item: "Chatbot", Status: "pagado"},
		},
	}

	s := c.Sanitized()
	s.Payments[0].Status = domain.PaymentStatusCancelled
	s.Purchases[0].Status = "reembolsado"

	// A sanitized copy must not alias the source's backing arrays.
	if c.Payments[0].Status != domain.PaymentStatusActive {
		t.Errorf("payment mutation wrote through: %q", c.Payments[0].Status)
	}
	if c.Purchases[0].Status != "pagado" {
		t.Errorf("purchase mutation wrote through: %q", c.Purchases[0].Status)
	}
}

func TestIsAuthorized(t *testing.T) {
	for name, tc := range map[string]struct {
		flag *bool
		want bool
	}{
		"absent flag":    {nil, true},
		"explicit true":  {boolPtr(true), true},
		"explicit false": {boolPtr(false), false},
	} {
		t.Run(name, func(t *testing.T) {
			c := domain.Client{Email: "x@gmail.com", Authorized: tc.flag}
			if got := c.IsAuthorized(); got != tc.want {
				t.Errorf("IsAuthorized() = %v, want %v", got, tc.want)
			}
		})
	}
}

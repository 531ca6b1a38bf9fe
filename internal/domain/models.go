// Package domain holds the entities shared across the portal API:
// client records with their purchase history and payment methods,
// staff accounts and inbound sales leads.
package domain

// Client is a portal account as stored in the clients backend.
// Password and Authorized are only populated on the storage side;
// Sanitized strips them before anything leaves the service layer.
//
// Authorized is a pointer so that an absent flag can be told apart from an
// explicit false: only an explicit false blocks login.
type Client struct {
	Email          string     `json:"email"`
	Password       string     `json:"password,omitempty"`
	Authorized     *bool      `json:"authorized,omitempty"`
	Name           string     `json:"name,omitempty"`
	BillingAddress string     `json:"billingAddress,omitempty"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Purchases      []Purchase `json:"purchases"`
	Payments       []Payment  `json:"payments"`
}

// IsAuthorized reports whether the account may enter the portal.
// Missing or true means authorized; only an explicit false denies.
func (c *Client) IsAuthorized() bool {
	return c.Authorized == nil || *c.Authorized
}

// Sanitized returns a copy safe to hand to the frontend: no password, no
// authorization flag, and purchases/payments normalized to non-nil slices.
// The slices are copied too, so mutating the result (a session flipping a
// payment status locally) never writes through into the source record.
func (c *Client) Sanitized() *Client {
	out := *c
	out.Password = ""
	out.Authorized = nil
	out.Purchases = append([]Purchase(nil), c.Purchases...)
	out.Payments = append([]Payment(nil), c.Payments...)
	out.Normalize()
	return &out
}

// Normalize replaces nil purchase/payment slices with empty ones so the
// JSON contract always carries arrays, never null.
func (c *Client) Normalize() {
	if c.Purchases == nil {
		c.Purchases = []Purchase{}
	}
	if c.Payments == nil {
		c.Payments = []Payment{}
	}
}

// Purchase is a line of the client's purchase history. The portal never
// writes purchases; an external fulfillment process appends them.
type Purchase struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	PDFURL string  `json:"pdfUrl,omitempty"`
}

// Payment method statuses. A payment method is never removed from the list,
// only flipped to cancelled.
const (
	PaymentStatusActive    = "activo"
	PaymentStatusCancelled = "cancelado"
)

// Payment is a payment method registered by the client. The ID is generated
// client-side as a millisecond timestamp; Amount is always 0 — the portal
// does not track real recurring charge amounts.
type Payment struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
}

// StaffAccount is a row of the staff_users table. Staff authentication is a
// plain email+password match; there is no authorization flag beyond the row
// existing. The whole row (password included) is returned to the staff UI,
// matching the existing contract.
type StaffAccount struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Known lead plans from the pricing page. Plan is stored as free text; these
// are the values the order form sends.
const (
	LeadPlanChatbot    = "chatbot"
	LeadPlanPlugin     = "plugin"
	LeadPlanAutomation = "automation"
)

// Lead is an inbound sales inquiry from the public order form. Append-only:
// never mutated or deleted by this system.
type Lead struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Plan      string `json:"plan"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company,omitempty"`
}

// UpdatableClientFields is the fixed allow-list for client record updates.
// Keys outside this list are silently dropped, never an error.
var UpdatableClientFields = []string{
	"name",
	"billingAddress",
	"phoneNumber",
	"purchases",
	"payments",
	"authorized",
}

package domain

import "fmt"

// Error types for consistent error handling across the portal API.

// ErrValidation indicates missing or malformed input (400).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates no backend row matched the credentials (401).
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrAccountDisabled indicates valid credentials on an account whose
// authorized flag is explicitly false (403). Client accounts only; staff
// accounts carry no such flag.
type ErrAccountDisabled struct {
	Email string
}

func (e *ErrAccountDisabled) Error() string {
	return "Acceso no autorizado"
}

// ErrNotFound indicates an entity absent from the chosen backend (404).
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrStorage indicates a backend read/write failure (500). Callers must not
// assume partial writes succeeded.
type ErrStorage struct {
	Backend string
	Err     error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage error [%s]: %v", e.Backend, e.Err)
}

func (e *ErrStorage) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the breaker for an outbound backend is open.
// On the authenticate read path this counts as "primary unreachable" and
// triggers the fallback; everywhere else it surfaces as a storage error.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

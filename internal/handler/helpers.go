// Package handler wires the portal services to their HTTP surface: the
// chi router, the JSON envelope helpers and the domain-error-to-status
// mapping shared by every endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
)

// writeJSON writes v with the given status. Marshal failures fall back to a
// plain 500 since the response writer is already committed after WriteHeader.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"ok":false,"message":"encoding error"}`, http.StatusInternalServerError)
	}
}

// writeError writes the {ok:false, message} envelope every endpoint uses for
// failures.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"ok":      false,
		"message": message,
	})
}

// handleServiceError maps domain errors to HTTP statuses. The two
// authentication outcomes stay distinguishable on purpose: unknown
// credentials are a 401 "Credenciales inválidas", a disabled account is a
// 403 "Acceso no autorizado".
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation   *domain.ErrValidation
		unauthorized *domain.ErrUnauthorized
		disabled     *domain.ErrAccountDisabled
		notFound     *domain.ErrNotFound
		storage      *domain.ErrStorage
		circuitOpen  *domain.ErrCircuitOpen
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &disabled):
		writeError(w, http.StatusForbidden, disabled.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &storage), errors.As(err, &circuitOpen):
		logger.Error("backend failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}

// decodeBody decodes a JSON request body into dst with a 400 on failure.
// Returns false when the response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return false
	}
	return true
}

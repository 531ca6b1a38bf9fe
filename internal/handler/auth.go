package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginHandler handles POST /login: client portal authentication with the
// primary-then-fallback lookup behind it.
func loginHandler(auth *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		if creds.Email == "" || creds.Password == "" {
			writeError(w, http.StatusBadRequest, "Email y contraseña son requeridos")
			return
		}

		client, err := auth.LoginClient(r.Context(), creds.Email, creds.Password)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"client": client,
		})
	}
}

// staffLoginHandler handles POST /staff-login. The full staff row goes back
// to the caller, matching the staff portal contract.
func staffLoginHandler(auth *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		if creds.Email == "" || creds.Password == "" {
			writeError(w, http.StatusBadRequest, "Email y contraseña son requeridos")
			return
		}

		account, err := auth.LoginStaff(r.Context(), creds.Email, creds.Password)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"staff": account,
		})
	}
}

package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/service"
)

// adminClientInfoHandler handles GET /admin-client-info: the full client
// list, passwords and authorization flags included, for the staff dashboard.
func adminClientInfoHandler(clients *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := clients.ListAll(r.Context())
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"data": list,
		})
	}
}

type updateClientRequest struct {
	Email   string         `json:"email"`
	Updates map[string]any `json:"updates"`
}

// updateClientHandler handles POST /update-client. Updates must be a JSON
// object; its keys are filtered against the allow-list downstream, so
// unknown keys are dropped rather than rejected.
func updateClientHandler(clients *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateClientRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "Email es requerido")
			return
		}
		if req.Updates == nil {
			writeError(w, http.StatusBadRequest, "Updates debe ser un objeto")
			return
		}

		client, err := clients.Update(r.Context(), req.Email, req.Updates)
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

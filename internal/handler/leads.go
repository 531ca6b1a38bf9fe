package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/domain"
	"github.com/pixelshield/portal-api/internal/service"
)

// listLeadsHandler handles GET /leads. This endpoint always answers 200:
// when the lead store is unreachable the staff dashboard gets an empty list
// with ok=false instead of an error page.
func listLeadsHandler(leads *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := leads.ListAll(r.Context())
		if err != nil {
			logger.Warn("lead listing degraded to empty", zap.Error(err))
			writeJSON(w, http.StatusOK, map[string]any{
				"ok":   false,
				"data": []domain.Lead{},
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"data": list,
		})
	}
}

// createLeadHandler handles POST /leads: one inquiry from the public order
// form into the append-only log. The response is a bare acknowledgement;
// the stored lead (ID included) is internal to the staff dashboard.
func createLeadHandler(leads *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.LeadInput
		if !decodeBody(w, r, &in) {
			return
		}

		if _, err := leads.Append(r.Context(), in); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok": true,
		})
	}
}

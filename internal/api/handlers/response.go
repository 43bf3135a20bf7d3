// Package handlers implements the HTTP handlers for the config service API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// AuditFromRequest assembles the audit context for an admin write from the
// authenticated identity and request provenance.
func AuditFromRequest(r *http.Request, reason string) models.AuditContext {
	return models.AuditContext{
		AdminEmail: middleware.GetAdminEmail(r.Context()),
		IPAddress:  middleware.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Reason:     reason,
	}
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
)

// RotateKeysHandler acknowledges key rotation requests. Rotation itself is
// performed out of band; this endpoint records the request and hands back a
// rotation ID for tracking.
type RotateKeysHandler struct {
	logger *slog.Logger
}

// NewRotateKeysHandler creates a new rotate-keys handler.
func NewRotateKeysHandler(logger *slog.Logger) *RotateKeysHandler {
	return &RotateKeysHandler{logger: logger}
}

// rotateRequest is the body of POST /admin/rotate-keys.
type rotateRequest struct {
	Keys          []string `json:"keys"`
	Reason        string   `json:"reason"`
	NotifyClients bool     `json:"notifyClients"`
}

// Rotate handles POST /admin/rotate-keys.
func (h *RotateKeysHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("Invalid request body"))
		return
	}
	if len(req.Keys) == 0 {
		apierrors.WriteError(w, apierrors.NewValidationError("keys is required"))
		return
	}

	rotationID := uuid.NewString()

	h.logger.Info("key rotation requested",
		"rotation_id", rotationID,
		"keys", req.Keys,
		"reason", req.Reason,
		"notify_clients", req.NotifyClients,
		"admin_email", middleware.GetAdminEmail(r.Context()),
		"client_ip", middleware.ClientIP(r),
	)

	WriteJSON(w, http.StatusAccepted, map[string]any{
		"rotationId":    rotationID,
		"keys":          req.Keys,
		"status":        "scheduled",
		"notifyClients": req.NotifyClients,
		"requestedAt":   time.Now().UTC(),
	})
}

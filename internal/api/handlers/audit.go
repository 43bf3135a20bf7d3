package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/admin"
	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// AuditHandler serves the admin audit trail.
type AuditHandler struct {
	service *admin.Service
	logger  *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(service *admin.Service, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

// List handles GET /admin/audit-logs.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AuditLogFilter{
		Key:      q.Get("key"),
		DaysBack: intParam(q.Get("days"), 7),
		Limit:    intParam(q.Get("limit"), 100),
	}
	if env, ok := models.ParseEnvironment(q.Get("env")); ok {
		filter.Environment = env
	}

	logs, err := h.service.AuditLogs(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit log query failed",
			"admin_email", middleware.GetAdminEmail(r.Context()),
			"key_filter", filter.Key,
			"error", err,
		)
		apierrors.WriteError(w, apierrors.NewBackendError("Failed to fetch audit logs"))
		return
	}

	if logs == nil {
		logs = []models.AuditLogEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"count": len(logs),
		"filter": map[string]any{
			"key":   filter.Key,
			"env":   filter.Environment,
			"days":  filter.DaysBack,
			"limit": filter.Limit,
		},
		"generatedAt": time.Now().UTC(),
	})
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/admin"
	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// AdminConfigHandler handles administrative configuration CRUD.
type AdminConfigHandler struct {
	service *admin.Service
	logger  *slog.Logger
}

// NewAdminConfigHandler creates a new admin config handler.
func NewAdminConfigHandler(service *admin.Service, logger *slog.Logger) *AdminConfigHandler {
	return &AdminConfigHandler{service: service, logger: logger}
}

// List handles GET /admin/config.
func (h *AdminConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	env := environmentParam(r)

	res, err := h.service.ListAll(r.Context(), env)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	entries := res.Entries
	if entries == nil {
		entries = []models.ConfigEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"entries":      entries,
		"environment":  env,
		"publicCount":  res.PublicCount,
		"privateCount": res.PrivateCount,
	})
}

// upsertRequest is the body of POST /admin/config.
type upsertRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	IsPublic    bool   `json:"isPublic"`
	Environment string `json:"environment"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
}

// Upsert handles POST /admin/config.
func (h *AdminConfigHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("Invalid request body"))
		return
	}

	entry, err := h.service.Upsert(r.Context(), admin.UpsertParams{
		Key:         req.Key,
		Value:       req.Value,
		IsPublic:    req.IsPublic,
		Category:    req.Category,
		Description: req.Description,
		Environment: models.Environment(req.Environment),
		Audit:       AuditFromRequest(r, req.Reason),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /admin/config/{key}.
func (h *AdminConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	env := environmentParam(r)
	reason := r.URL.Query().Get("reason")

	err := h.service.Delete(r.Context(), key, env, AuditFromRequest(r, reason))
	if err != nil {
		if errors.Is(err, admin.ErrCriticalKey) {
			apierrors.WriteError(w, apierrors.NewForbiddenError("Critical system keys cannot be deleted").
				WithSuggestion("Consider rotating the key instead"))
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"deleted":     true,
		"key":         key,
		"environment": env,
	})
}

func (h *AdminConfigHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *admin.ValidationError
	if errors.As(err, &ve) {
		apierrors.WriteError(w, apierrors.NewValidationError(ve.Message))
		return
	}
	if errors.Is(err, backend.ErrNotFound) {
		apierrors.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Config entry not found"})
		return
	}

	h.logger.Error("admin config operation failed",
		"admin_email", middleware.GetAdminEmail(r.Context()),
		"client_ip", middleware.ClientIP(r),
		"error", err,
	)
	if errors.Is(err, backend.ErrBackendTimeout) {
		apierrors.WriteError(w, apierrors.New(apierrors.CodeBackendTimeout, "Backend did not respond in time"))
		return
	}
	apierrors.WriteError(w, apierrors.NewBackendError("Configuration backend error"))
}

// environmentParam reads the env query parameter, defaulting to production.
func environmentParam(r *http.Request) models.Environment {
	if env, ok := models.ParseEnvironment(r.URL.Query().Get("env")); ok {
		return env
	}
	return models.EnvProduction
}

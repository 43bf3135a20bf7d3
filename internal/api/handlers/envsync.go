package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/override"
)

// EnvSyncHandler updates runtime overrides from the admin dashboard.
type EnvSyncHandler struct {
	overrides *override.Store
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewEnvSyncHandler creates a new env-sync handler.
func NewEnvSyncHandler(ov *override.Store, c *cache.Cache, logger *slog.Logger) *EnvSyncHandler {
	return &EnvSyncHandler{overrides: ov, cache: c, logger: logger}
}

// envSyncRequest is the body of POST /admin/env-sync.
type envSyncRequest struct {
	SupabaseURL         string `json:"supabaseUrl"`
	SupabaseAnonKey     string `json:"supabaseAnonKey"`
	AdMobAppID          string `json:"admobAppId"`
	AdMobBannerID       string `json:"admobBannerId"`
	AdMobInterstitialID string `json:"admobInterstitialId"`
	AdMobRewardedID     string `json:"admobRewardedId"`
}

// Sync handles POST /admin/env-sync: applies the override values, persists
// them for restart recovery and clears cached bundles for every environment.
func (h *EnvSyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req envSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("Invalid request body"))
		return
	}
	if req.SupabaseURL == "" && req.SupabaseAnonKey == "" &&
		req.AdMobAppID == "" && req.AdMobBannerID == "" &&
		req.AdMobInterstitialID == "" && req.AdMobRewardedID == "" {
		apierrors.WriteError(w, apierrors.NewValidationError("No override values supplied"))
		return
	}

	err := h.overrides.Apply(override.Values{
		SupabaseURL:         req.SupabaseURL,
		SupabaseAnonKey:     req.SupabaseAnonKey,
		AdMobAppID:          req.AdMobAppID,
		AdMobBannerID:       req.AdMobBannerID,
		AdMobInterstitialID: req.AdMobInterstitialID,
		AdMobRewardedID:     req.AdMobRewardedID,
	})
	if err != nil {
		h.logger.Error("override persistence failed",
			"admin_email", middleware.GetAdminEmail(r.Context()),
			"error", err,
		)
		apierrors.WriteError(w, apierrors.NewBackendError("Failed to persist overrides"))
		return
	}

	// Overrides affect direct resolution in every environment, including
	// ad hoc labels admitted in development mode.
	cleared := h.cache.ClearAll()

	h.logger.Info("runtime overrides synced",
		"admin_email", middleware.GetAdminEmail(r.Context()),
		"client_ip", middleware.ClientIP(r),
		"environments_cleared", cleared,
	)

	WriteJSON(w, http.StatusOK, map[string]any{
		"synced":    true,
		"timestamp": time.Now().UTC(),
	})
}

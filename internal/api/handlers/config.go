package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/resolver"
)

// ConfigHandler serves the client configuration endpoint.
type ConfigHandler struct {
	cache    *cache.Cache
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(c *cache.Cache, res *resolver.Resolver, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{cache: c, resolver: res, logger: logger}
}

// configResponse is the client-facing envelope.
type configResponse struct {
	Data        models.ConfigBundle `json:"data"`
	Cached      bool                `json:"cached"`
	Timestamp   time.Time           `json:"timestamp"`
	Environment models.Environment  `json:"environment"`
}

// Get handles GET /config. The validated environment comes from the request
// context; the cache is the fast path and the resolver the slow path.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	env := middleware.GetEnvironment(r.Context())
	appVersion := middleware.GetAppVersion(r.Context())

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")

	if bundle, ok := h.cache.Get(env); ok {
		WriteJSON(w, http.StatusOK, configResponse{
			Data:        bundle,
			Cached:      true,
			Timestamp:   time.Now().UTC(),
			Environment: env,
		})
		return
	}

	bundle, err := h.resolver.Resolve(r.Context(), env, appVersion)
	if err != nil {
		if errors.Is(err, resolver.ErrServiceUnavailable) {
			apierrors.WriteError(w, apierrors.NewServiceUnavailableError())
			return
		}
		h.logger.Error("config resolution failed",
			"environment", env,
			"client_ip", middleware.ClientIP(r),
			"error", err,
		)
		apierrors.WriteError(w, apierrors.NewBackendError("Failed to load configuration"))
		return
	}

	WriteJSON(w, http.StatusOK, configResponse{
		Data:        bundle,
		Cached:      false,
		Timestamp:   time.Now().UTC(),
		Environment: env,
	})
}

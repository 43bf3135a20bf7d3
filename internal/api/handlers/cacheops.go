package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
)

// CacheOpsHandler exposes administrative cache controls.
type CacheOpsHandler struct {
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCacheOpsHandler creates a new cache operations handler.
func NewCacheOpsHandler(c *cache.Cache, logger *slog.Logger) *CacheOpsHandler {
	return &CacheOpsHandler{cache: c, logger: logger}
}

// Clear handles POST /admin/clear-cache: unconditionally drops every entry.
func (h *CacheOpsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared := h.cache.ClearAll()

	h.logger.Info("config cache cleared",
		"entries", cleared,
		"admin_email", middleware.GetAdminEmail(r.Context()),
		"client_ip", middleware.ClientIP(r),
	)

	WriteJSON(w, http.StatusOK, map[string]any{
		"cleared":   cleared,
		"timestamp": time.Now().UTC(),
	})
}

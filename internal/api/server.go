// Package api provides the HTTP API server for the config service.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/admin"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/handlers"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/health"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/middleware"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/auth"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/override"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/ratelimit"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/resolver"
	"github.com/mrpraj7488/VidGro-Admin-sub001/pkg/config"
)

// Version is the current version of the API server.
// This should be set at build time using ldflags.
var Version = "dev"

// Server represents the HTTP API server. It owns all shared in-memory state:
// the rate-limit windows, the config cache and the runtime overrides are
// fields constructed once here and injected into handlers, never globals.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	config        *config.Config
	backend       backend.Client
	cache         *cache.Cache
	limiter       *ratelimit.Limiter
	overrides     *override.Store
	resolver      *resolver.Resolver
	adminService  *admin.Service
	logger        *slog.Logger
	healthChecker *health.Checker
}

// NewServer creates a new API server with the given dependencies. The
// backend client may be nil when no service credentials are configured.
func NewServer(cfg *config.Config, bc backend.Client, overrides *override.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		backend:   bc,
		cache:     cache.New(cfg.CacheTTL),
		limiter:   ratelimit.New(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests),
		overrides: overrides,
		logger:    logger,
	}

	s.resolver = resolver.New(cfg, overrides, bc, s.cache, logger)
	s.adminService = admin.NewService(bc, s.cache, logger)

	var pinger health.Pinger
	if bc != nil {
		pinger = bc
	}
	s.healthChecker = health.NewChecker(pinger, s.cache, s.limiter, Version)

	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoint (no auth required)
	r.Get("/health", s.healthChecker.Handler())

	// Client configuration endpoint: rate limiter then request validator.
	validator := middleware.NewClientValidator(middleware.ClientValidatorConfig{
		DevBypass:     s.config.IsDevelopment(),
		MinAppVersion: s.config.App.MinVersion,
	}, s.logger)
	configHandler := handlers.NewConfigHandler(s.cache, s.resolver, s.logger)
	r.Route("/config", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.limiter, s.logger))
		r.Use(validator.Validate)
		r.Get("/", configHandler.Get)
	})

	// Admin routes: permission-checked, not client rate limited.
	checker := auth.NewAllowlistChecker(
		s.config.Admin.AllowedEmails,
		s.config.Admin.SuperAdminEmail,
		s.logger,
	)
	var jwtChecker *auth.JWTChecker
	if s.config.Admin.JWTSecret != "" {
		jwtChecker = auth.NewJWTChecker([]byte(s.config.Admin.JWTSecret), s.logger)
	}
	adminAuth := middleware.NewAdminAuth(checker, jwtChecker, s.logger)

	adminConfigHandler := handlers.NewAdminConfigHandler(s.adminService, s.logger)
	auditHandler := handlers.NewAuditHandler(s.adminService, s.logger)
	cacheOpsHandler := handlers.NewCacheOpsHandler(s.cache, s.logger)
	envSyncHandler := handlers.NewEnvSyncHandler(s.overrides, s.cache, s.logger)
	rotateHandler := handlers.NewRotateKeysHandler(s.logger)

	r.Route("/admin", func(r chi.Router) {
		r.With(adminAuth.Require(auth.ActionRead, "config")).
			Get("/config", adminConfigHandler.List)
		r.With(adminAuth.Require(auth.ActionWrite, "config")).
			Post("/config", adminConfigHandler.Upsert)
		r.With(adminAuth.Require(auth.ActionDelete, "config")).
			Delete("/config/{key}", adminConfigHandler.Delete)

		r.With(adminAuth.Require(auth.ActionRead, "audit-logs")).
			Get("/audit-logs", auditHandler.List)

		r.With(adminAuth.Require(auth.ActionWrite, "cache")).
			Post("/clear-cache", cacheOpsHandler.Clear)
		r.With(adminAuth.Require(auth.ActionWrite, "overrides")).
			Post("/env-sync", envSyncHandler.Sync)
		r.With(adminAuth.Require(auth.ActionRotate, "keys")).
			Post("/rotate-keys", rotateHandler.Rotate)
	})

	s.router = r
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() chi.Router {
	return s.router
}

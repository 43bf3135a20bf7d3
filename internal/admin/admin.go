// Package admin implements the administrative configuration service:
// validated writes against the persistent backend with audit context,
// critical-key protection and cache invalidation.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// Field limits for configuration entries.
const (
	MaxKeyLength   = 100
	MaxValueLength = 10000
)

// criticalKeys may never be deleted: removing them would break core
// authentication or encryption capability. Rotation is the supported path.
var criticalKeys = map[string]struct{}{
	"SERVICE_ROLE_KEY": {},
	"JWT_SECRET":       {},
	"ENCRYPTION_KEY":   {},
}

// ErrCriticalKey is returned when a delete targets a protected key.
var ErrCriticalKey = errors.New("critical system keys cannot be deleted")

// ValidationError describes a rejected admin write.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsCriticalKey reports whether the key belongs to the critical key set.
// The SUPABASE_-prefixed spellings used by older dashboards count as well.
func IsCriticalKey(key string) bool {
	key = strings.ToUpper(strings.TrimSpace(key))
	key = strings.TrimPrefix(key, "SUPABASE_")
	_, ok := criticalKeys[key]
	return ok
}

// Service is the admin configuration service. It is the only writer that
// triggers cache invalidation, and only after the backend confirms
// persistence.
type Service struct {
	backend backend.Client
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewService creates the admin service.
func NewService(bc backend.Client, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: bc, cache: c, logger: logger}
}

// UpsertParams carries an admin upsert request.
type UpsertParams struct {
	Key         string
	Value       string
	IsPublic    bool
	Category    string
	Description string
	Environment models.Environment
	Audit       models.AuditContext
}

// Upsert validates and persists a configuration entry, then invalidates
// cached bundles for the written environment.
func (s *Service) Upsert(ctx context.Context, p UpsertParams) (*models.ConfigEntry, error) {
	if err := validateUpsert(&p); err != nil {
		return nil, err
	}

	entry, err := s.backend.UpsertConfig(ctx, backend.UpsertParams{
		Key:         p.Key,
		Value:       p.Value,
		IsPublic:    p.IsPublic,
		Category:    p.Category,
		Description: p.Description,
		Environment: p.Environment,
		Audit:       p.Audit,
	})
	if err != nil {
		s.logger.Error("config upsert failed",
			"key", p.Key,
			"environment", p.Environment,
			"admin_email", p.Audit.AdminEmail,
			"ip_address", p.Audit.IPAddress,
			"error", err,
		)
		return nil, err
	}

	// Invalidation only after the backend confirmed the write.
	invalidated := s.cache.InvalidateContaining(string(p.Environment))
	s.logger.Info("config upserted",
		"key", p.Key,
		"environment", p.Environment,
		"is_public", p.IsPublic,
		"admin_email", p.Audit.AdminEmail,
		"cache_invalidated", invalidated,
	)
	return entry, nil
}

// Delete removes a configuration entry unless the key is critical. The
// critical-key check precedes any backend call and is independent of the
// caller's identity.
func (s *Service) Delete(ctx context.Context, key string, env models.Environment, audit models.AuditContext) error {
	if IsCriticalKey(key) {
		s.logger.Warn("critical key deletion blocked",
			"key", key,
			"environment", env,
			"admin_email", audit.AdminEmail,
			"ip_address", audit.IPAddress,
		)
		return ErrCriticalKey
	}
	if _, ok := models.ParseEnvironment(string(env)); !ok {
		return &ValidationError{Field: "environment", Message: "unknown environment"}
	}

	if err := s.backend.DeleteConfig(ctx, key, env, audit); err != nil {
		s.logger.Error("config delete failed",
			"key", key,
			"environment", env,
			"admin_email", audit.AdminEmail,
			"error", err,
		)
		return err
	}

	invalidated := s.cache.InvalidateContaining(string(env))
	s.logger.Info("config deleted",
		"key", key,
		"environment", env,
		"admin_email", audit.AdminEmail,
		"cache_invalidated", invalidated,
	)
	return nil
}

// ListResult holds the entries for an environment with visibility counts.
type ListResult struct {
	Entries      []models.ConfigEntry
	PublicCount  int
	PrivateCount int
}

// ListAll fetches every entry for the environment.
func (s *Service) ListAll(ctx context.Context, env models.Environment) (*ListResult, error) {
	entries, err := s.backend.FetchAllConfig(ctx, env)
	if err != nil {
		return nil, err
	}

	res := &ListResult{Entries: entries}
	for _, e := range entries {
		if e.IsPublic {
			res.PublicCount++
		} else {
			res.PrivateCount++
		}
	}
	return res, nil
}

// AuditLogs is a passthrough query to the backend audit trail with bounds
// applied to the filter.
func (s *Service) AuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, error) {
	if filter.DaysBack <= 0 {
		filter.DaysBack = 7
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.backend.FetchAuditLogs(ctx, filter)
}

func validateUpsert(p *UpsertParams) error {
	p.Key = strings.TrimSpace(p.Key)
	if p.Key == "" {
		return &ValidationError{Field: "key", Message: "key is required"}
	}
	if len(p.Key) > MaxKeyLength {
		return &ValidationError{Field: "key", Message: fmt.Sprintf("key exceeds %d characters", MaxKeyLength)}
	}
	if len(p.Value) > MaxValueLength {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("value exceeds %d characters", MaxValueLength)}
	}
	if _, ok := models.ParseEnvironment(string(p.Environment)); !ok {
		return &ValidationError{Field: "environment", Message: "unknown environment"}
	}
	if p.IsPublic {
		lower := strings.ToLower(p.Key)
		if strings.Contains(lower, "secret") || strings.Contains(lower, "private") {
			return &ValidationError{
				Field:   "key",
				Message: "public keys may not contain 'secret' or 'private'",
			}
		}
	}
	if p.Category == "" {
		p.Category = "general"
	}
	return nil
}

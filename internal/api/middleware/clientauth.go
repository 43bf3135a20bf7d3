package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// Context keys for validated request data.
type contextKey string

const (
	// EnvironmentKey is the context key for the validated environment.
	EnvironmentKey contextKey = "environment"
	// AppVersionKey is the context key for the validated app version.
	AppVersionKey contextKey = "app_version"
)

// placeholderAPIKey is the literal value shipped in client templates; a key
// equal to it means the client was never configured.
const placeholderAPIKey = "your-api-key"

var appVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// GetEnvironment extracts the validated environment from the request context.
func GetEnvironment(ctx context.Context) models.Environment {
	if v, ok := ctx.Value(EnvironmentKey).(models.Environment); ok {
		return v
	}
	return models.EnvProduction
}

// GetAppVersion extracts the validated app version from the request context.
func GetAppVersion(ctx context.Context) string {
	if v, ok := ctx.Value(AppVersionKey).(string); ok {
		return v
	}
	return ""
}

// ClientValidatorConfig configures the client request validator.
type ClientValidatorConfig struct {
	// DevBypass skips credential checks entirely, accepting any
	// environment value supplied. Only set in development mode.
	DevBypass bool
	// MinAppVersion is included in the hint when a malformed version is
	// rejected.
	MinAppVersion string
}

// ClientValidator authenticates inbound client requests and normalizes the
// requested environment before the cache and resolver run.
type ClientValidator struct {
	cfg    ClientValidatorConfig
	logger *slog.Logger
}

// NewClientValidator creates the client request validator middleware.
func NewClientValidator(cfg ClientValidatorConfig, logger *slog.Logger) *ClientValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientValidator{cfg: cfg, logger: logger}
}

// Validate checks credentials, app version and environment, in that order,
// before any backend work happens. On success the environment and version
// are attached to the request context.
func (v *ClientValidator) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !v.cfg.DevBypass {
			apiKey := r.Header.Get("x-api-key")
			if apiKey == "" || apiKey == placeholderAPIKey {
				v.logger.Debug("client request rejected: missing API key",
					"client_ip", ClientIP(r),
				)
				apierrors.WriteError(w, apierrors.NewAuthError("Invalid API key"))
				return
			}
		}

		appVersion := r.Header.Get("x-app-version")
		if appVersion != "" && !appVersionPattern.MatchString(appVersion) {
			apierrors.WriteError(w, apierrors.NewValidationError(
				"Invalid app version format, minimum supported version is "+v.cfg.MinAppVersion))
			return
		}

		raw := r.Header.Get("x-environment")
		if raw == "" {
			raw = r.URL.Query().Get("env")
		}
		if raw == "" {
			raw = string(models.EnvProduction)
		}
		env, ok := models.ParseEnvironment(raw)
		if !ok {
			// Development mode accepts any environment value supplied.
			if !v.cfg.DevBypass {
				apierrors.WriteError(w, apierrors.NewValidationError(
					"Invalid environment, must be production, staging or development"))
				return
			}
			env = models.Environment(raw)
		}

		ctx := context.WithValue(r.Context(), EnvironmentKey, env)
		ctx = context.WithValue(ctx, AppVersionKey, appVersion)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

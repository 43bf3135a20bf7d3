package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/auth"
)

// AdminEmailKey is the context key for the authenticated admin identity.
const AdminEmailKey contextKey = "admin_email"

// GetAdminEmail extracts the admin identity from the request context.
func GetAdminEmail(ctx context.Context) string {
	if v, ok := ctx.Value(AdminEmailKey).(string); ok {
		return v
	}
	return ""
}

// AdminAuth authorizes administrative requests. The identity comes from the
// x-admin-email header, or from a bearer token when a token checker is
// configured.
type AdminAuth struct {
	checker    auth.PermissionChecker
	jwtChecker *auth.JWTChecker
	logger     *slog.Logger
}

// NewAdminAuth creates the admin authorization middleware. jwtChecker may be
// nil when bearer tokens are not configured.
func NewAdminAuth(checker auth.PermissionChecker, jwtChecker *auth.JWTChecker, logger *slog.Logger) *AdminAuth {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminAuth{checker: checker, jwtChecker: jwtChecker, logger: logger}
}

// Require returns a middleware enforcing the given action on the resource.
func (a *AdminAuth) Require(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get("x-admin-email")

			// Bearer tokens take precedence when configured.
			if a.jwtChecker != nil {
				if token := auth.ExtractBearerToken(r.Header.Get("Authorization")); token != "" {
					claims, err := a.jwtChecker.ValidateToken(token)
					if err == nil && a.jwtChecker.IsAuthorized(r.Context(), token, action, resource) {
						ctx := context.WithValue(r.Context(), AdminEmailKey, claims.Email)
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
					a.logger.Warn("admin token rejected",
						"action", action,
						"resource", resource,
						"client_ip", ClientIP(r),
						"error", err,
					)
					apierrors.WriteError(w, apierrors.NewForbiddenError("Admin access denied"))
					return
				}
			}

			if email == "" || !a.checker.IsAuthorized(r.Context(), email, action, resource) {
				a.logger.Warn("admin access denied",
					"admin_email", email,
					"action", action,
					"resource", resource,
					"client_ip", ClientIP(r),
				)
				apierrors.WriteError(w, apierrors.NewForbiddenError("Admin access denied"))
				return
			}

			ctx := context.WithValue(r.Context(), AdminEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

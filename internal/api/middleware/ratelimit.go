package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/mrpraj7488/VidGro-Admin-sub001/internal/api/errors"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/ratelimit"
)

// RateLimit returns a middleware gating requests through the sliding-window
// limiter. Denied requests get a 429 with a Retry-After header and the
// retryAfter body field.
func RateLimit(limiter *ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientIP(r)

			res := limiter.Admit(clientID)
			if !res.Allowed {
				logger.Warn("rate limit exceeded",
					"client_ip", clientID,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfterSeconds))
				apierrors.WriteError(w, apierrors.NewRateLimitError(res.RetryAfterSeconds))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

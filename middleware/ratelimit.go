package middleware

import (
	"net/http"
	"strconv"

	"github.com/akinalp/rtctoken/handlers"
	"github.com/akinalp/rtctoken/pkg"
)

// UserRateLimiter is the per-key limiter consumed by RateLimitByUser.
// Implemented by *ratelimit.Limiter.
type UserRateLimiter interface {
	Allow(key string) bool
	RetryAfterSeconds(key string) int
}

// RateLimitByUser bounds how often one authenticated user may call the
// wrapped routes. It must sit behind SessionGate.Require.
func RateLimitByUser(limiter UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := handlers.UserIDFrom(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(userID) {
				w.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfterSeconds(userID)))
				pkg.Error(w, pkg.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

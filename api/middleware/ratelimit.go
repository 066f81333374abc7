package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/printcraft/printcraft-backend/api/responses"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/logger"
)

type windowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy bounds attempts per client IP inside a fixed window.
type AuthRateLimitPolicy struct {
	Scope  string
	Window time.Duration
	Limit  int64
}

func NewAuthRateLimitPolicy(scope string, window time.Duration, limit int64) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{Scope: scope, Window: window, Limit: limit}
}

// AuthRateLimit throttles credential endpoints per client IP. A nil limiter
// disables throttling; a limiter failure fails open and is logged.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || policy.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), policy.Scope+":"+ip, policy.Limit, policy.Window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate limit check failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/reelist-app/reelist-backend/api/responses"
	"github.com/reelist-app/reelist-backend/pkg/config"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// MutationRateLimit throttles write traffic per caller over a fixed window.
// Authenticated callers are keyed by user id, anonymous ones by client IP.
// A zero window or limit disables the middleware entirely.
func MutationRateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.MutationWindow <= 0 || cfg.MutationLimit <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			subject := UserIDFromContext(ctx)
			scope := "user"
			if subject == "" {
				subject = clientIP(r)
				scope = "ip"
			}
			if subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("reelist:rate_limit:mutation:%s:%s", scope, subject)
			count, err := store.IncrWithTTL(ctx, key, cfg.MutationWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(cfg.MutationLimit) {
				if logg != nil {
					fields := map[string]any{
						"scope":          scope,
						"attempts":       count,
						"limit":          cfg.MutationLimit,
						"window_seconds": int(cfg.MutationWindow.Seconds()),
					}
					logg.Warn(logg.WithFields(ctx, fields), "rate_limit.exceeded")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

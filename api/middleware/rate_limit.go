package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

const (
	defaultAPIRateLimit  = 120
	defaultAPIRateWindow = time.Minute
)

type fixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit caps request volume per authenticated user, falling back to the
// client IP for anonymous traffic.
func RateLimit(store fixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			scope := UserIDFromContext(ctx)
			if scope == "" {
				scope = "ip:" + clientIP(r)
			}

			allowed, count, err := store.FixedWindowAllow(ctx, "api:"+scope, defaultAPIRateLimit, defaultAPIRateWindow)
			if err != nil {
				// Degrade open: a limiter outage should not take the API down.
				if logg != nil {
					logg.Error(ctx, "rate limiter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"scope":    scope,
						"attempts": count,
						"limit":    defaultAPIRateLimit,
					})
					logg.Warn(logCtx, "api.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

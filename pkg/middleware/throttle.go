package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"audit-auth/pkg/ratelimit"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

// Throttle rejects banned clients with 429 and records every 401 the wrapped
// handler returns as a failure for the client ip. A limiter error lets the
// request through.
func Throttle(limiter ratelimit.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			banned, err := limiter.IsBanned(r.Context(), ip)
			if err != nil {
				logger.Error("Rate limiter unavailable", zap.Error(err))
			}
			if banned {
				logger.Warn("Throttled request", zap.String("ip", ip), zap.String("path", r.URL.Path))
				utils.ResponseTooManyRequests(w, "Too many failed attempts. Try again later.")
				return
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			// the request may already be canceled; bookkeeping must still land
			ctx := context.WithoutCancel(r.Context())
			switch {
			case rw.statusCode == http.StatusUnauthorized:
				err = limiter.RegisterFailure(ctx, ip)
			case rw.statusCode < http.StatusBadRequest:
				err = limiter.Reset(ctx, ip)
			default:
				err = nil
			}
			if err != nil {
				logger.Error("Failed to update rate limiter", zap.Error(err), zap.String("ip", ip))
			}
		})
	}
}

// clientIP strips the port from RemoteAddr, or returns it as is when it
// carries none.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

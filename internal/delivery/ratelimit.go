package delivery

import (
	"net"
	"net/http"

	"github.com/Vovarama1992/edushare/internal/metrics"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
)

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr
// from X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func limitKey(scope string, r *http.Request) string {
	return scope + ":" + clientIP(r)
}

// RateLimit counts every request against the limiter before it reaches next.
func RateLimit(l ports.RateLimiter, scope string, log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), limitKey(scope, r))
			if err != nil {
				// fail open
				log.Log(logger.LogEntry{
					Level:   "error",
					Message: "rate limiter failed",
					Fields:  map[string]any{"scope": scope},
					Error:   err,
				})
			} else if !ok {
				metrics.RateLimited.WithLabelValues(scope).Inc()
				writeMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

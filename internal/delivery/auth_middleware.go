package delivery

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
)

type ctxKey int

const userKey ctxKey = iota

// UserFrom returns the authenticated caller, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(h)
}

// OptionalAuth attaches the caller when a token is present. No token means
// an anonymous request; a bad token is rejected outright.
func OptionalAuth(auth ports.AuthService, log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Log(logger.LogEntry{
					Level:   "info",
					Message: "token rejected",
					Fields:  map[string]any{"path": r.URL.Path},
					Error:   err,
				})
				writeMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized. Please log in.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized. Please log in.")
			return
		}
		if !u.IsAdmin {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

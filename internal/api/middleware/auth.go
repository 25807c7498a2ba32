package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/simplygenda/backend/internal/storage/models"
)

// SessionCookie carries the bearer token for browser page loads.
const SessionCookie = "session"

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// TokenResolver maps a bearer token to its user. It returns nil for unknown
// or expired tokens.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Token extracts the bearer token from the Authorization header, the session
// cookie or the access_token query parameter, in that order. Browsers cannot
// set headers on websocket upgrades, hence the query parameter.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("access_token")
}

// Auth rejects requests without a valid token with 401 and stores the user
// in the request context otherwise.
func Auth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := Token(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Authentication required")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				log.Printf("Failed to resolve session: %v", err)
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to resolve session")
				return
			}
			if user == nil {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Session expired")
				return
			}

			noteUser(r.Context(), user.ID)
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user of the request.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// TokenFrom returns the token the request was authenticated with.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// WithUser returns ctx carrying user, for handlers exercised without Auth.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/account-api/shared/auth"
	"github.com/vasapolrittideah/account-api/shared/response"
)

type contextKey struct{}

var sessionClaimsKey = contextKey{}

// SessionAuthenticator authenticates requests by session token.
type SessionAuthenticator struct {
	sessions   auth.SessionManager
	cookieName string
}

func NewSessionAuthenticator(sessions auth.SessionManager, cookieName string) *SessionAuthenticator {
	return &SessionAuthenticator{
		sessions:   sessions,
		cookieName: cookieName,
	}
}

// Require rejects requests without a valid session with 401. The claims of a
// valid session are stored in the request context.
func (a *SessionAuthenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.extractToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := a.sessions.Verify(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSessionClaims(r.Context(), claims)))
	})
}

// extractToken prefers the bearer header over the session cookie.
func (a *SessionAuthenticator) extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func WithSessionClaims(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

// SessionClaimsFromContext returns the claims stored by Require.
func SessionClaimsFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*auth.SessionClaims)
	return claims, ok && claims != nil
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mingxw/aerochat/backend/internal/model/session"
)

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	SessionFromToken(ctx context.Context, token string) (*session.Session, error)
}

// Session resolves the request's identity once and stores it in the context.
// It never rejects a request: a missing or invalid token simply yields no
// session, and each handler decides whether that is fatal for its operation.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token != "" {
				if sess, err := resolver.SessionFromToken(r.Context(), token); err == nil {
					r = r.WithContext(session.NewContext(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

package session

import (
	"context"

	"github.com/mingxw/aerochat/backend/internal/model/user"
)

// Session is the identity resolved for one request. It is attached to the
// request context by the session middleware and may be absent; each handler
// decides what an anonymous request means for its operation.
type Session struct {
	User *user.User
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the resolved session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session placed by the middleware. The boolean
// reports whether a signed-in user is present.
func FromContext(ctx context.Context) (*Session, bool) {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s, s != nil && s.User != nil
}

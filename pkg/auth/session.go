package auth

import "context"

// Roles understood by the rbac middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session is the authenticated principal for one request. It is built by the
// auth middleware from a validated token and travels in the request context;
// handlers receive it explicitly through ctx.Context.Session.
type Session struct {
	UserID uint
	Email  string
	Role   string
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, if any.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// SessionFromClaims converts validated token claims into a Session.
func SessionFromClaims(c *Claims) *Session {
	return &Session{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

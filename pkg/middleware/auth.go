package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// AuthMiddleware validates the bearer token and attaches an explicit
// *auth.Session to the request context. Requests without a valid token are
// rejected with 401 before reaching the handler.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("auth: token rejected", "error", err)
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := auth.WithSession(r.Context(), auth.SessionFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleFromCtx returns the role of the authenticated session.
func RoleFromCtx(r *http.Request) (string, bool) {
	s, ok := auth.SessionFrom(r.Context())
	if !ok {
		return "", false
	}
	return s.Role, true
}

// UserIDFromCtx returns the user id of the authenticated session.
func UserIDFromCtx(r *http.Request) (uint, bool) {
	s, ok := auth.SessionFrom(r.Context())
	if !ok {
		return 0, false
	}
	return s.UserID, true
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// Browsers cannot set headers on websocket upgrades.
	if r.Header.Get("Upgrade") != "" {
		return r.URL.Query().Get("token")
	}
	return ""
}

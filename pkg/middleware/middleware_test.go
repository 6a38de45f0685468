package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

func noContent(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestRateLimitPerIP(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(noContent))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
}

func TestRateLimitForwardedFor(t *testing.T) {
	h := middleware.RateLimit(1, time.Minute)(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req.RemoteAddr = "192.0.2.1:1"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCORS(t *testing.T) {
	opts := middleware.DefaultCORSOptions()
	opts.AllowedOrigins = []string{"https://shop.example.com"}
	h := middleware.CORS(opts)(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com ,https://b.example.com,")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, middleware.CORSFromEnv().AllowedOrigins)
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("SESSION_SECRET", "middleware-secret")

	var seen uint
	h := middleware.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.UserIDFromCtx(r)
		role, _ := middleware.RoleFromCtx(r)
		assert.Equal(t, auth.RoleAdmin, role)
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	tok, err := auth.GenerateToken(7, "root@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(""))
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer nonsense"))
	assert.Equal(t, http.StatusNoContent, serve("bearer "+tok))
	assert.EqualValues(t, 7, seen)
}

func TestAuthMiddlewareWebsocketQueryToken(t *testing.T) {
	t.Setenv("SESSION_SECRET", "middleware-secret")
	tok, err := auth.GenerateToken(1, "root@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	h := middleware.AuthMiddleware(http.HandlerFunc(noContent))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/ws?token="+tok, nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

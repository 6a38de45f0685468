package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
)

func serve(s *auth.Session) int {
	h := rbac.Admin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if s != nil {
		req = req.WithContext(auth.WithSession(req.Context(), s))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAdminGate(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&auth.Session{UserID: 1, Role: auth.RoleUser}))
	assert.Equal(t, http.StatusNoContent, serve(&auth.Session{UserID: 2, Role: auth.RoleAdmin}))
}

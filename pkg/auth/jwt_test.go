package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	tok, err := auth.GenerateToken(7, "ada@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "one")
	tok, err := auth.GenerateToken(1, "a@b.co", auth.RoleUser)
	require.NoError(t, err)

	t.Setenv("SESSION_SECRET", "two")
	_, err = auth.ValidateToken(tok)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, auth.CheckPassword(hash, "s3cret!"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}

func TestSessionContext(t *testing.T) {
	_, ok := auth.SessionFrom(context.Background())
	assert.False(t, ok)

	ctx := auth.WithSession(context.Background(), &auth.Session{UserID: 3, Role: auth.RoleAdmin})
	s, ok := auth.SessionFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(3), s.UserID)
	assert.True(t, s.IsAdmin())
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "buyer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestStatic_TokenLifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := signed(t, "user_123", now.Add(time.Hour))

	s, err := NewStatic(raw)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	got, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.True(t, s.SignedIn())
	assert.Equal(t, "user_123", s.Claims().Subject)
	assert.Equal(t, "buyer@example.com", s.Claims().Email)

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = s.Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)

	s.Clear()
	got, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, s.Claims())
}

func TestStatic_RejectsGarbage(t *testing.T) {
	_, err := NewStatic("not-a-jwt")
	assert.Error(t, err)

	s, err := NewStatic("")
	require.NoError(t, err)
	assert.False(t, s.SignedIn())
}

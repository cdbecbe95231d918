package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret: "test-secret",
		Issuer: "maplewood-test",
		Clock:  clock,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(t, nil)

	for _, scope := range []string{ScopeGuest, ScopeAdmin} {
		token, err := svc.GenerateToken(scope)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		require.Equal(t, scope, claims.Scope)
		require.Equal(t, "maplewood-test", claims.Issuer)
	}
}

func TestGenerateTokenRejectsUnknownScope(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.GenerateToken("superuser")
	require.Error(t, err)
}

func TestValidateTokenExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, func() time.Time { return now })

	token, err := svc.GenerateToken(ScopeGuest)
	require.NoError(t, err)

	now = now.Add(DefaultTokenTTL + time.Minute)
	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestService(t, nil)
	other, err := NewJWTService(JWTConfig{Secret: "different-secret"})
	require.NoError(t, err)

	token, err := other.GenerateToken(ScopeAdmin)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

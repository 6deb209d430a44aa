package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "attendance-service", time.Hour)
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	t.Run("RoundTrip", func(t *testing.T) {
		token, exp, err := issuer.Issue("admin", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, fixed.Add(time.Hour), exp)

		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Subject)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Equal(t, "attendance-service", claims.Issuer)
	})

	t.Run("Expired", func(t *testing.T) {
		token, _, err := issuer.Issue("admin", RoleAdmin)
		require.NoError(t, err)

		later := NewTokenIssuer("test-secret", "attendance-service", time.Hour)
		later.now = func() time.Time { return fixed.Add(2 * time.Hour) }

		_, err = later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, _, err := issuer.Issue("admin", RoleAdmin)
		require.NoError(t, err)

		other := NewTokenIssuer("other-secret", "attendance-service", time.Hour)
		other.now = issuer.now

		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		token, _, err := issuer.Issue("admin", RoleAdmin)
		require.NoError(t, err)

		other := NewTokenIssuer("test-secret", "someone-else", time.Hour)
		other.now = issuer.now

		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UnsignedRejected", func(t *testing.T) {
		claims := Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "attendance-service",
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(fixed.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

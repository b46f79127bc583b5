package middleware

import (
	"testing"
	"time"

	"labhive/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: "user-1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestValidateJWT(t *testing.T) {
	signed := signToken(t, globals.JwtSecret, time.Now().Add(time.Hour))

	// websocket clients pass the bare token in a query parameter
	claims, err := ValidateJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user", claims.Role)

	// the header form with the Bearer prefix works too
	claims, err = ValidateJWT("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateJWTRejects(t *testing.T) {
	_, err := ValidateJWT("")
	assert.Error(t, err)

	_, err = ValidateJWT("not-a-jwt")
	assert.Error(t, err)

	// signed with the wrong secret
	forged := signToken(t, []byte("someone-elses-secret"), time.Now().Add(time.Hour))
	_, err = ValidateJWT(forged)
	assert.Error(t, err)

	// expired
	expired := signToken(t, globals.JwtSecret, time.Now().Add(-time.Hour))
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

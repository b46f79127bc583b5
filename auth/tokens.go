package auth

import (
	"time"

	"labhive/globals"
	"labhive/middleware"
	"labhive/rdx"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 72 * time.Hour

// generateToken issues a signed JWT for the account and records the
// session in Redis so logout can invalidate it.
func generateToken(accountID, role string) (string, error) {
	claims := &middleware.Claims{
		UserID: accountID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		return "", err
	}

	if err := rdx.SetWithExpiry("auth:token:"+signed, accountID, tokenTTL); err != nil {
		// session tracking is advisory; the JWT itself still expires
		return signed, nil
	}
	return signed, nil
}

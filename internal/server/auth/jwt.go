// Package auth issues and verifies the HS256 tokens the HTTP layer uses to
// identify callers.
package auth

import (
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller's principal and the admin marker on top of the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Principal string `json:"principal"`
	Admin     bool   `json:"admin,omitempty"`
}

func GenerateToken(principal string, admin bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Principal: principal,
		Admin:     admin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Principal == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

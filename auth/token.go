package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "slack-chat/errors"
)

// jwtKey is the secret used to sign tokens. Overridden at startup via
// Configure; in production it must come from the environment, never from
// source.
var jwtKey = []byte("dev_only_signing_key_change_me")

// Configure installs the signing key for the process. An empty secret is a
// misconfiguration the caller must treat as fatal.
func Configure(secret string) error {
	if secret == "" {
		return apperrors.ErrTokenGeneration
	}
	jwtKey = []byte(secret)
	return nil
}

// CustomClaims defines the data stored inside the JWT. The username is the
// only identity claim the backend needs; validation never touches a store.
type CustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT asserting the username for the given
// validity window.
func GenerateToken(username string, tokenDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "slack-chat",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateToken parses and validates the signature and expiration of a JWT
// string. It is a pure function of the token content and the clock, so it
// can run on any number of nodes without coordination. Expired tokens are
// reported distinctly from malformed or forged ones.
func ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the claims in a dashboard user token.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ErrSecretNotConfigured is returned when JWT_SECRET is missing.
var ErrSecretNotConfigured = errors.New("JWT_SECRET is not configured")

func secret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateUserToken generates a JWT token for dashboard user authentication.
func GenerateUserToken(userID string) (string, error) {
	key := secret()
	if len(key) == 0 {
		return "", ErrSecretNotConfigured
	}

	claims := &JWTClaims{
		UserID: userID,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken validates a JWT token and returns the claims.
func ValidateToken(tokenString string) (*JWTClaims, error) {
	key := secret()
	if len(key) == 0 {
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

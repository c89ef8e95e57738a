package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sparkrunner/portal/internal/models"
)

var (
	// ErrInvalidToken is returned when a token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is past its exp claim.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload the auth service signs into session tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string       `json:"id"`
	Email  string       `json:"email"`
	Role   models.Roles `json:"role"`
}

func (c *Claims) identity() *models.Identity {
	return &models.Identity{
		ID:    c.UserID,
		Email: c.Email,
		Roles: c.Role,
	}
}

// Decode reads the identity out of token. The signature is not verified
// here; the backends verify it on every request.
func Decode(token string) (*models.Identity, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		return nil, err
	}
	return claims.identity(), nil
}

// DecodeAt is Decode plus a check of the exp claim against now.
// Tokens without exp never expire here.
func DecodeAt(token string, now time.Time) (*models.Identity, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return claims.identity(), nil
}

func decodeClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}

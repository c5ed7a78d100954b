package repository

import (
	"context"

	"showcase-platform/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSubject is what an access token asserts about its bearer.
type TokenSubject struct {
	UserID    string
	Email     string
	Role      model.Role
	SessionID string
}

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, subject TokenSubject) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	UserID    string     `json:"userID"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	SessionID string     `json:"sid"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry role r or a more privileged one.
func (c *Claims) HasRole(r model.Role) bool {
	return c.Role.AtLeast(r)
}

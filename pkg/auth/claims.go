package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role distinguishes rider tokens from internal service tokens.
type Role string

const (
	RoleRider   Role = "rider"
	RoleService Role = "service"
)

// IsValid reports whether the role is one the gate recognizes.
func (r Role) IsValid() bool {
	return r == RoleRider || r == RoleService
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}

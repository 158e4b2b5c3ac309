package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID `json:"uid"`
	TenantID    uuid.UUID `json:"tid"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	IsSuperuser bool      `json:"su,omitempty"`
}

// Principal extracts the caller identity carried by the token.
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:      c.UserID,
		TenantID:    c.TenantID,
		Role:        c.Role,
		IsSuperuser: c.IsSuperuser,
	}
}

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

const (
	claimsKey    = "claims"
	principalKey = "principal"
)

// Authenticator validates a bearer token and returns its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthMiddleware validates the bearer token and stores the caller in fiber.Locals.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "invalid authorization header format")
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			return unauthorized(c, "missing token")
		}

		claims, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error":   true,
					"message": "failed to verify token status",
				})
			}
			return unauthorized(c, "invalid or revoked token")
		}

		c.Locals(claimsKey, claims)
		c.Locals(principalKey, claims.Principal())
		return c.Next()
	}
}

// Claims returns the claims stored by AuthMiddleware.
func Claims(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*domain.Claims)
	return claims, ok
}

// Principal returns the caller stored by AuthMiddleware, or the zero principal.
func Principal(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(principalKey).(domain.Principal)
	return p
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

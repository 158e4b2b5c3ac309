package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireSuperuser rejects callers without platform-wide rights. It must run after
// AuthMiddleware.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := Claims(c); !ok {
			return unauthorized(c, "unauthorized")
		}
		if !Principal(c).IsSuperuser {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   true,
				"message": "superuser access required",
			})
		}
		return c.Next()
	}
}

package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Config holds the auth middleware settings.
type Config struct {
	// ApiKey is the expected credential. When empty, the check is
	// disabled and every request passes through.
	ApiKey string
}

// New creates a middleware that guards the API with a static credential.
// Clients authenticate with "Authorization: Bearer <key>" like against
// the real archive, or with an X-API-Key header.
func New(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.ApiKey == "" {
			return c.Next()
		}

		supplied := c.Get("X-API-Key")
		if supplied == "" {
			if after, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
				supplied = after
			}
		}

		if supplied == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  fiber.StatusUnauthorized,
				"message": "Missing authentication credentials.",
			})
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(config.ApiKey)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  fiber.StatusForbidden,
				"message": "Permission denied.",
			})
		}
		return c.Next()
	}
}

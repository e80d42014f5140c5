package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// NoCacheHeaders forbids any intermediary or browser caching. Applied
// to the auth endpoints so token responses are never stored.
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}

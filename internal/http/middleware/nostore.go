package middleware

import "github.com/gofiber/fiber/v2"

// NoStore marks responses as uncacheable. Unlocked documents must not linger in shared caches
// past their retention window.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderPragma, "no-cache")
		return c.Next()
	}
}

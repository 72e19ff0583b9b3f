package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. Kept as a wiring placeholder for
// middleware that is conditionally disabled.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORS echoes allowed origins back with credentials enabled so partner pages
// can post beacons that carry the Beacon cookie. A "*" entry allows any origin.
// Requests from other origins pass through without CORS headers.
func CORS(allowedOrigins []string) fiber.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[strings.ToLower(origin)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		c.Vary(fiber.HeaderOrigin)

		_, ok := allowed[strings.ToLower(origin)]
		if origin == "" || (!ok && !allowAll) {
			if c.Method() == fiber.MethodOptions {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept, X-Request-ID")
		c.Set(fiber.HeaderAccessControlExposeHeaders, "Content-Length, Content-Type, X-Request-ID")
		c.Set(fiber.HeaderAccessControlMaxAge, "86400")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}

// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the identity context set by the Gateway.
// X-User-ID carries the identity provider subject; services resolve it to a
// stored user themselves. Routes behind this middleware require a subject.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		if authID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("auth_id", authID)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// RequireRole gates a route group on a Gateway-asserted role. It never says
// whether the target resource exists — just 403.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		log.Printf("🚫 [USER_CTX] role %q required for %s", role, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// AuthID returns the Gateway-asserted identity subject for the request, or ""
// when the route ran without user context (public paths).
func AuthID(c *fiber.Ctx) string {
	if v, ok := c.Locals("auth_id").(string); ok {
		return v
	}
	return ""
}

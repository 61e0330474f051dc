package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Actor extracts the caller identity headers and stores them in context for
// history attribution and document uploads. Identity is accepted as given
// strings; there is no authentication here, callers default to "system".
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("actorID", c.Get("X-Actor-Id", "system"))
		c.Locals("actorName", c.Get("X-Actor-Name", "system"))
		return c.Next()
	}
}

// ActorID returns the caller id stored by Actor.
func ActorID(c *fiber.Ctx) string {
	if id, ok := c.Locals("actorID").(string); ok && id != "" {
		return id
	}
	return "system"
}

// ActorName returns the caller display name stored by Actor.
func ActorName(c *fiber.Ctx) string {
	if name, ok := c.Locals("actorName").(string); ok && name != "" {
		return name
	}
	return "system"
}

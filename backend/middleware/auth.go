package middleware

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/config"
	"learnhub/backend/utils"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token and stores the caller's identity
// for the handlers behind it.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireRole lets through callers holding one of roles. Admins pass every
// role check.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := Identity(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if id.Role == utils.RoleAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Forbidden - "+roles[0]+" access required")
	}
}

// AdminMiddleware restricts a route group to administrators.
func AdminMiddleware() fiber.Handler {
	return RequireRole(utils.RoleAdmin)
}

// WebhookMiddleware checks the signature of incoming webhook calls.
func WebhookMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := utils.VerifyWebhookSignature(c, cfg); err != nil {
			return utils.Fail(c, err)
		}
		return c.Next()
	}
}

// Identity returns the identity AuthMiddleware stored.
func Identity(c *fiber.Ctx) (utils.Identity, bool) {
	id, ok := c.Locals(identityKey).(utils.Identity)
	return id, ok
}

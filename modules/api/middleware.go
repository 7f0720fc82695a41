package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/modules/registry"
)

const (
	// ActorContextKey is the key the auth middleware stores the actor
	// snapshot under in the Fiber context.
	ActorContextKey = "actor"
)

// AuthMiddleware validates the Bearer token and resolves it to a fresh
// profile on every request, so role changes and deactivation take effect
// immediately. Deactivated profiles still resolve; the policy engine
// denies their operations downstream.
func AuthMiddleware(registryPort registry.RegistryPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "authentication",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "authentication",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "authentication",
				Message: "Token is required",
			})
		}

		p, err := registryPort.Resolve(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "authentication",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(ActorContextKey, policy.ActorOf(p))
		return c.Next()
	}
}

// actorFromContext returns the actor snapshot stored by AuthMiddleware.
func actorFromContext(c *fiber.Ctx) (policy.Actor, bool) {
	actor, ok := c.Locals(ActorContextKey).(policy.Actor)
	return actor, ok
}

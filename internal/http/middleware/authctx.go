package middleware

import (
	"github.com/gofiber/fiber/v2"

	"guideapi/internal/model"
)

const (
	// ActorIDHeader carries the authenticated user ID set by the gateway.
	ActorIDHeader = "X-Actor-ID"
	// ActorRoleHeader carries the user's role within the tenant.
	ActorRoleHeader = "X-Actor-Role"
	// TenantIDHeader carries the tenant the request is scoped to.
	TenantIDHeader = "X-Tenant-ID"

	// ActorLocalKey is the locals key holding the resolved model.Actor.
	ActorLocalKey = "actor"
)

// AuthContext resolves the acting user from the identity headers set by
// the upstream gateway and stores a model.Actor in Fiber locals. The
// service never authenticates itself; absent or malformed headers are a
// 401 before any handler runs.
func AuthContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := c.Get(ActorIDHeader)
		tenantID := c.Get(TenantIDHeader)
		if actorID == "" || tenantID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity headers")
		}

		role, err := model.ParseRole(c.Get(ActorRoleHeader))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid role")
		}

		c.Locals(ActorLocalKey, model.Actor{
			ID:       actorID,
			Role:     role,
			TenantID: tenantID,
		})

		return c.Next()
	}
}

// ActorFromCtx returns the actor placed in locals by AuthContext.
func ActorFromCtx(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(ActorLocalKey).(model.Actor)
	return actor, ok
}

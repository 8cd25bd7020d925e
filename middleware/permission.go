package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/utils"
)

// RequirePermission checks the caller may perform action on its own resource
// of the given kind. Instance-level checks happen in the handlers once the
// record is loaded.
func RequirePermission(action authz.Action, kind authz.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		if !authz.Allow(actor, action, authz.Own(actor, kind)) {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Forbidden",
				Error:   "You don't have permission to perform this action",
			})
		}
		return c.Next()
	}
}

// RequireRole checks the caller has exactly the given role.
func RequireRole(role authz.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Actor(c).Role != role {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Forbidden",
				Error:   "You don't have the required role to perform this action",
			})
		}
		return c.Next()
	}
}

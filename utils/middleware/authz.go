package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/seclog"
)

// OwnerResolver reports whether the authenticated user owns the resource
// the request targets. Implementations load the resource themselves.
type OwnerResolver func(c *fiber.Ctx, userID uint) (bool, error)

// OwnerOrRoles allows the request through when the user owns the target
// resource or holds one of the listed roles. Must run after Required.
func OwnerOrRoles(resolve OwnerResolver, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetUserID(c)
		if !ok {
			seclog.UnauthorizedAccess(c, "ownership check without identity")
			return response.Forbidden(c, "Access denied")
		}

		if role, ok := GetUserRole(c); ok {
			for _, r := range roles {
				if role == r {
					return c.Next()
				}
			}
		}

		owns, err := resolve(c, userID)
		if err != nil {
			return response.InternalServerError(c, "")
		}
		if !owns {
			seclog.UnauthorizedAccess(c, "not resource owner")
			return response.Forbidden(c, "Insufficient permissions")
		}

		return c.Next()
	}
}

package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	LocalUserID = "userID"
	LocalRole   = "userRole"
)

// RequireUser trusts the identity headers set by the edge proxy. Requests
// arriving without a parseable user ID are rejected before any handler runs.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderUserID)
		if raw == "" {
			return unauthorized(c)
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			return unauthorized(c)
		}

		role := c.Get(HeaderUserRole)
		if role == "" {
			role = "user"
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":    constants.ErrCodeUnauthorized,
		"message": constants.GetErrorMessage(constants.ErrCodeUnauthorized),
	})
}

// UserID returns the authenticated user set by RequireUser.
func UserID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals(LocalUserID).(uint64)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

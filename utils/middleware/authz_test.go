package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownershipApp(resolve OwnerResolver, userID uint, role string) *fiber.App {
	app := fiber.New()
	app.Get("/resource/:id", func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}, OwnerOrRoles(resolve, "admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestOwnerOrRolesAllowsOwner(t *testing.T) {
	resolve := func(c *fiber.Ctx, userID uint) (bool, error) {
		return userID == 7, nil
	}
	app := ownershipApp(resolve, 7, "student")

	resp, err := app.Test(httptest.NewRequest("GET", "/resource/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOwnerOrRolesAllowsRole(t *testing.T) {
	resolve := func(c *fiber.Ctx, userID uint) (bool, error) {
		return false, nil
	}
	app := ownershipApp(resolve, 99, "admin")

	resp, err := app.Test(httptest.NewRequest("GET", "/resource/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOwnerOrRolesRejectsOthers(t *testing.T) {
	resolve := func(c *fiber.Ctx, userID uint) (bool, error) {
		return false, nil
	}
	app := ownershipApp(resolve, 99, "student")

	resp, err := app.Test(httptest.NewRequest("GET", "/resource/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOwnerOrRolesRejectsMissingIdentity(t *testing.T) {
	app := fiber.New()
	app.Get("/resource/:id", OwnerOrRoles(func(c *fiber.Ctx, userID uint) (bool, error) {
		return true, nil
	}, "admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/resource/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

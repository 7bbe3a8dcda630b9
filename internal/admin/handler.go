package admin

import (
	"jobboard-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/dashboard
func DashboardHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// POST /api/admin/users/:id/toggle
func ToggleUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.ToggleUserEnabled(c.UserContext(), id, actor)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

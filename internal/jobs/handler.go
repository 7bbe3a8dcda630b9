package jobs

import (
	"jobboard-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

type JobPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	EmploymentType string `json:"employment_type"`
	SalaryMin      *int   `json:"salary_min"`
	SalaryMax      *int   `json:"salary_max"`
	CompanyID      *uint  `json:"company_id"`
	Status         string `json:"status"`
}

func (p JobPayload) toRequest() JobRequest {
	return JobRequest{
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		EmploymentType: p.EmploymentType,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		CompanyID:      p.CompanyID,
		Status:         p.Status,
	}
}

// GET /api/jobs
func ListOpenJobsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ListOpen(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/jobs/mine
func ListMyJobsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		out, err := svc.ListForUser(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/jobs/:id
func GetJobHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		job, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(job)
	}
}

// POST /api/jobs
func CreateJobHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		var body JobPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		job, err := svc.Create(c.UserContext(), body.toRequest(), actor)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(job)
	}
}

// PUT /api/jobs/:id
func UpdateJobHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body JobPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		job, err := svc.Update(c.UserContext(), id, body.toRequest(), actor)
		if err != nil {
			return err
		}
		return c.JSON(job)
	}
}

// DELETE /api/jobs/:id
func DeleteJobHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id, actor); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/jobs/:id/can-manage
func CanManageHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		ok, err := svc.CanManage(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"job_id": id, "can_manage": ok})
	}
}

package applications

import (
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/jobs"

	"github.com/gofiber/fiber/v2"
)

type SubmitRequest struct {
	CoverLetter string `json:"cover_letter"`
	ResumeURL   string `json:"resume_url"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// POST /api/jobs/:id/applications
func SubmitApplicationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		jobID, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SubmitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		app, err := svc.Submit(c.UserContext(), jobID, actor, body.CoverLetter, body.ResumeURL)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(app)
	}
}

// GET /api/applications/mine
func ListMyApplicationsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		out, err := svc.ListForCandidate(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/jobs/:id/applications
// Only the poster of the job or a super admin may see its applications.
func ListJobApplicationsHandler(svc *Service, jobSvc *jobs.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		jobID, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		ok, err := jobSvc.CanManage(c.UserContext(), actor, jobID)
		if err != nil {
			return err
		}
		if !ok {
			svc.metrics.Denied("application.list")
			return fiber.NewError(fiber.StatusForbidden, "you cannot view applications for this job")
		}

		out, err := svc.ListForJob(c.UserContext(), jobID)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// POST /api/applications/:id/status
func UpdateStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		app, err := svc.Transition(c.UserContext(), id, body.Status, actor)
		if err != nil {
			return err
		}
		return c.JSON(app)
	}
}

package company

import (
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CompanyResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	OwnerID     uint   `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Address     string `json:"address"`
}

func ToResponse(c models.Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Address:     c.Address,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toResponses(cs []models.Company) []CompanyResponse {
	res := make([]CompanyResponse, 0, len(cs))
	for _, c := range cs {
		res = append(res, ToResponse(c))
	}
	return res
}

// POST /api/companies
func CreateCompanyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}

		var body CreateCompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		created, err := svc.Create(c.UserContext(), actor, CreateInput{
			Name:        body.Name,
			Description: body.Description,
			Website:     body.Website,
			Address:     body.Address,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(*created))
	}
}

// GET /api/companies
func ListCompaniesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cs, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toResponses(cs))
	}
}

// GET /api/companies/mine
func ListMyCompaniesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		cs, err := svc.ListOwnedBy(c.UserContext(), actor.ID)
		if err != nil {
			return err
		}
		return c.JSON(toResponses(cs))
	}
}

// GET /api/companies/:id
func GetCompanyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		co, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(*co))
	}
}

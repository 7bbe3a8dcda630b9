package auth

import (
	"errors"

	"jobboard-backend/internal/company"
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	CompanyName        string `json:"company_name"`
	CompanyWebsite     string `json:"company_website"`
	CompanyDescription string `json:"company_description"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint                      `json:"id"`
	FullName  string                    `json:"full_name"`
	Email     string                    `json:"email"`
	Phone     string                    `json:"phone,omitempty"`
	Enabled   bool                      `json:"enabled"`
	Roles     []models.RoleName         `json:"roles"`
	Companies []company.CompanyResponse `json:"companies,omitempty"`
}

func toUserResponse(u *models.User, companies []models.Company) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Enabled:  u.Enabled,
		Roles:    u.RoleNames(),
	}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, company.ToResponse(c))
	}
	return resp
}

// POST /api/auth/register
func RegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, created, err := svc.Register(c.UserContext(), RegisterInput{
			FullName:           body.FullName,
			Email:              body.Email,
			Phone:              body.Phone,
			Password:           body.Password,
			Role:               body.Role,
			CompanyName:        body.CompanyName,
			CompanyWebsite:     body.CompanyWebsite,
			CompanyDescription: body.CompanyDescription,
		})
		if err != nil {
			return err
		}

		var companies []models.Company
		if created != nil {
			companies = append(companies, *created)
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user, companies))
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service, issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := svc.Login(c.UserContext(), body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		if err != nil {
			return err
		}

		token, err := issuer.GenerateToken(user)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(user, nil),
		})
	}
}

// GET /api/auth/me
func MeHandler(companies *company.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		owned, err := companies.ListOwnedBy(c.UserContext(), actor.ID)
		if err != nil {
			return err
		}
		return c.JSON(toUserResponse(actor, owned))
	}
}

package auth

import (
	"errors"
	"strings"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// JWTMiddleware resolves the bearer token to the current user, with roles
// loaded fresh from storage, and stores it as the request actor.
func JWTMiddleware(issuer *TokenIssuer, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := issuer.ParseToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		actor, err := svc.LoadActor(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
			}
			return err
		}
		if !actor.Enabled {
			return fiber.NewError(fiber.StatusForbidden, "account is disabled")
		}

		httpx.SetActor(c, actor)
		return c.Next()
	}
}

// RequireRole lets the request through when the actor holds any of the roles.
func RequireRole(allowedRoles ...models.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := httpx.Actor(c)
		if err != nil {
			return err
		}
		for _, r := range allowedRoles {
			if actor.HasRole(r) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to perform this action")
	}
}

// Package httpx holds fiber plumbing shared by the handler packages.
package httpx

import (
	"errors"
	"strconv"
	"time"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	CtxActorKey     = "actor"
	CtxRequestIDKey = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// SetActor stores the authenticated user for downstream handlers.
func SetActor(c *fiber.Ctx, u *models.User) {
	c.Locals(CtxActorKey, u)
}

// Actor returns the authenticated user or a 401 when the route is not behind the auth middleware.
func Actor(c *fiber.Ctx) (*models.User, error) {
	u, ok := c.Locals(CtxActorKey).(*models.User)
	if !ok || u == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return u, nil
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.InvalidArgument("invalid %s", name)
	}
	return uint(v), nil
}

// ErrorHandler renders every error as {"error": message}. *fiber.Error keeps
// its own status; service errors are mapped by kind.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status := apperr.HTTPStatus(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("path", c.Path()).
				Msg("unexpected error")
		}
		return c.Status(status).JSON(fiber.Map{"error": apperr.Message(err)})
	}
}

// AccessLog logs one line per request and propagates or assigns a request id.
func AccessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet; report the status it will choose.
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperr.HTTPStatus(err)
			}
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("http access")

		return err
	}
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(CtxRequestIDKey).(string)
	return rid
}

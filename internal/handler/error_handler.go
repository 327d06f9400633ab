package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
)

type errorMapping struct {
	target error
	status int
	detail string
}

var errorMappings = []errorMapping{
	{service.ErrEventNotFound, fiber.StatusNotFound, "Event not found"},
	{service.ErrTicketNotFound, fiber.StatusNotFound, "Ticket not found"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{service.ErrEventFull, fiber.StatusBadRequest, "Event is full"},
	{service.ErrAlreadyRegistered, fiber.StatusBadRequest, "Already registered"},
	{service.ErrEmailExists, fiber.StatusBadRequest, "Email already registered"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
	{service.ErrForbidden, fiber.StatusForbidden, "Not enough permissions"},
	{jwtPkg.ErrMissingToken, fiber.StatusUnauthorized, "Not authenticated"},
	{jwtPkg.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid token"},
}

// ErrorHandler turns handler errors into {"detail": ...} responses. Anything
// unrecognised is logged and reported as a 500 without internals.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fields, ok := utils.FieldErrors(err); ok {
			return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse(fields))
		}

		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				return c.Status(m.status).JSON(models.ErrorResponse(m.detail))
			}
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(models.ErrorResponse(fe.Message))
		}

		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Internal server error"))
	}
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	return uint(id), nil
}

func invalidBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}

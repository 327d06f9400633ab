package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/middleware"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	if _, err := h.authService.Register(c.UserContext(), req); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse("User registered successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	token, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(models.TokenResponse{
		AccessToken: token,
		TokenType:   service.TokenType,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(models.MeResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
}

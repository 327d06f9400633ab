package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/middleware"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
)

type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

func (h *RegistrationHandler) RegisterForEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	registration, err := h.registrationService.Register(c.UserContext(), eventID, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(models.RegistrationResponse{
		Message: "Registered successfully",
		Ticket:  registration.TicketCode,
	})
}

func (h *RegistrationHandler) MyRegistrations(c *fiber.Ctx) error {
	registrations, err := h.registrationService.ListUserRegistrations(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(registrations)
}

func (h *RegistrationHandler) VerifyTicket(c *fiber.Ctx) error {
	registration, err := h.registrationService.VerifyTicket(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(registration)
}

func (h *RegistrationHandler) TicketQRCode(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	png, err := h.registrationService.TicketQRCode(c.UserContext(), c.Params("code"), user.ID, middleware.CurrentRole(c))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(png)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/middleware"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	admin := middleware.CurrentUser(c)
	if _, err := h.eventService.CreateEvent(c.UserContext(), admin.ID, req); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse("Event created"))
}

func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.eventService.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(events)
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	event, err := h.eventService.GetEvent(c.UserContext(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(event)
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	if _, err := h.eventService.UpdateEvent(c.UserContext(), eventID, req); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse("Event updated"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.eventService.DeleteEvent(c.UserContext(), eventID); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse("Event deleted"))
}

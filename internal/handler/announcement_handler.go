package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
)

type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
	}
}

func (h *AnnouncementHandler) CreateAnnouncement(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	if _, err := h.announcementService.CreateAnnouncement(c.UserContext(), eventID, req); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse("Announcement created successfully"))
}

func (h *AnnouncementHandler) ListAnnouncements(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	announcements, err := h.announcementService.ListAnnouncements(c.UserContext(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(announcements)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AnnouncementService struct {
	db               *gorm.DB
	eventRepo        *repository.EventRepository
	announcementRepo *repository.AnnouncementRepository
	validator        *utils.Validator
	logger           *zap.Logger
}

func NewAnnouncementService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	announcementRepo *repository.AnnouncementRepository,
	validator *utils.Validator,
	logger *zap.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		db:               db,
		eventRepo:        eventRepo,
		announcementRepo: announcementRepo,
		validator:        validator,
		logger:           logger,
	}
}

func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, eventID uint, req models.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		EventID: eventID,
		Message: strings.TrimSpace(req.Message),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.eventRepo.WithTx(tx).GetByID(ctx, eventID); err != nil {
			return eventLookupError(err)
		}
		if err := s.announcementRepo.WithTx(tx).Create(ctx, announcement); err != nil {
			return fmt.Errorf("create announcement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("announcement created", zap.Uint("event_id", eventID), zap.Uint("announcement_id", announcement.ID))
	return announcement, nil
}

// ListAnnouncements returns the event's announcements oldest first. An unknown
// event yields ErrEventNotFound rather than an empty list.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, eventID uint) ([]models.Announcement, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, eventLookupError(err)
	}
	return s.announcementRepo.ListByEvent(ctx, eventID)
}

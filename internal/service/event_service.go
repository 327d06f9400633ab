package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EventService struct {
	db               *gorm.DB
	eventRepo        *repository.EventRepository
	registrationRepo *repository.RegistrationRepository
	announcementRepo *repository.AnnouncementRepository
	delivery         *TicketDelivery
	validator        *utils.Validator
	logger           *zap.Logger
}

func NewEventService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	registrationRepo *repository.RegistrationRepository,
	announcementRepo *repository.AnnouncementRepository,
	delivery *TicketDelivery,
	validator *utils.Validator,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		db:               db,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		announcementRepo: announcementRepo,
		delivery:         delivery,
		validator:        validator,
		logger:           logger,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, adminID uint, req models.EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Slots:       *req.Slots,
		CreatedBy:   adminID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created",
		zap.Uint("event_id", event.ID),
		zap.Uint("admin_id", adminID),
		zap.Int("slots", event.Slots),
	)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *EventService) GetEvent(ctx context.Context, eventID uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, eventLookupError(err)
	}
	return event, nil
}

// UpdateEvent overwrites title, description and slots. Fields missing from the
// request are not merged from the stored row.
func (s *EventService) UpdateEvent(ctx context.Context, eventID uint, req models.EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var event *models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)

		if _, err := events.GetByID(ctx, eventID); err != nil {
			return eventLookupError(err)
		}
		if _, err := events.Overwrite(ctx, eventID, strings.TrimSpace(req.Title), req.Description, *req.Slots); err != nil {
			return fmt.Errorf("update event: %w", err)
		}

		updated, err := events.GetByID(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		event = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event updated", zap.Uint("event_id", eventID), zap.Int("slots", event.Slots))
	return event, nil
}

// DeleteEvent removes the event together with its registrations and
// announcements. Archived ticket QR images are removed once the delete has
// committed.
func (s *EventService) DeleteEvent(ctx context.Context, eventID uint) error {
	var ticketCodes []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)
		registrations := s.registrationRepo.WithTx(tx)

		if _, err := events.GetByID(ctx, eventID); err != nil {
			return eventLookupError(err)
		}

		codes, err := registrations.TicketCodesByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("load tickets: %w", err)
		}
		ticketCodes = codes

		if err := registrations.DeleteByEvent(ctx, eventID); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if err := s.announcementRepo.WithTx(tx).DeleteByEvent(ctx, eventID); err != nil {
			return fmt.Errorf("delete announcements: %w", err)
		}

		deleted, err := events.Delete(ctx, eventID)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		if deleted == 0 {
			return ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("event deleted", zap.Uint("event_id", eventID), zap.Int("tickets", len(ticketCodes)))
	if s.delivery != nil && len(ticketCodes) > 0 {
		s.delivery.DispatchRevoke(ticketCodes)
	}
	return nil
}

func eventLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	return fmt.Errorf("load event: %w", err)
}

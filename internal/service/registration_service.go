package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sefazor/eventreg-backend/internal/metrics"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/pkg/qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	outcomeSuccess           = "success"
	outcomeEventNotFound     = "event_not_found"
	outcomeEventFull         = "event_full"
	outcomeAlreadyRegistered = "already_registered"
	outcomeError             = "error"
)

type RegistrationService struct {
	db               *gorm.DB
	eventRepo        *repository.EventRepository
	registrationRepo *repository.RegistrationRepository
	qr               *qrcode.QRService
	delivery         *TicketDelivery
	logger           *zap.Logger
}

// NewRegistrationService wires the registration flow. delivery may be nil.
func NewRegistrationService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	registrationRepo *repository.RegistrationRepository,
	qr *qrcode.QRService,
	delivery *TicketDelivery,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:               db,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		qr:               qr,
		delivery:         delivery,
		logger:           logger,
	}
}

// Register claims one slot of the event for user and issues a ticket. The
// slot check, the decrement and the insert commit together or not at all.
func (s *RegistrationService) Register(ctx context.Context, eventID uint, user *models.User) (*models.Registration, error) {
	var (
		event        *models.Event
		registration *models.Registration
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)
		registrations := s.registrationRepo.WithTx(tx)

		found, err := events.GetByID(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if found.Slots <= 0 {
			return ErrEventFull
		}

		exists, err := registrations.Exists(ctx, user.ID, eventID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if exists {
			return ErrAlreadyRegistered
		}

		taken, err := events.TakeSlot(ctx, eventID)
		if err != nil {
			return fmt.Errorf("take slot: %w", err)
		}
		if !taken {
			return ErrEventFull
		}

		registration = &models.Registration{
			UserID:     user.ID,
			EventID:    eventID,
			TicketCode: uuid.NewString(),
		}
		if err := registrations.Create(ctx, registration); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}

		event = found
		return nil
	})
	if err != nil {
		metrics.ObserveRegistration(registrationOutcome(err))
		return nil, err
	}
	metrics.ObserveRegistration(outcomeSuccess)

	s.logger.Info("registration created",
		zap.Uint("event_id", eventID),
		zap.Uint("user_id", user.ID),
		zap.String("ticket", registration.TicketCode),
	)

	if s.delivery != nil {
		delivered := *registration
		s.delivery.Dispatch(user, event, &delivered)
	}
	return registration, nil
}

func (s *RegistrationService) ListUserRegistrations(ctx context.Context, userID uint) ([]models.Registration, error) {
	return s.registrationRepo.ListByUser(ctx, userID)
}

// VerifyTicket resolves a ticket code to its registration.
func (s *RegistrationService) VerifyTicket(ctx context.Context, ticketCode string) (*models.Registration, error) {
	if _, err := uuid.Parse(ticketCode); err != nil {
		return nil, ErrTicketNotFound
	}

	registration, err := s.registrationRepo.GetByTicket(ctx, ticketCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	return registration, nil
}

// TicketQRCode renders the QR image of a ticket for its holder or an admin.
func (s *RegistrationService) TicketQRCode(ctx context.Context, ticketCode string, userID uint, role models.Role) ([]byte, error) {
	registration, err := s.VerifyTicket(ctx, ticketCode)
	if err != nil {
		return nil, err
	}
	if registration.UserID != userID && role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.qr.GenerateQRCode(registration.TicketCode)
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return outcomeEventNotFound
	case errors.Is(err, ErrEventFull):
		return outcomeEventFull
	case errors.Is(err, ErrAlreadyRegistered):
		return outcomeAlreadyRegistered
	default:
		return outcomeError
	}
}

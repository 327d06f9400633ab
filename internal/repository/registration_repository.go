package repository

import (
	"context"

	"github.com/sefazor/eventreg-backend/internal/models"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) WithTx(tx *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: tx}
}

func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *RegistrationRepository) GetByTicket(ctx context.Context, ticketCode string) (*models.Registration, error) {
	var registration models.Registration
	err := r.db.WithContext(ctx).Where("ticket_code = ?", ticketCode).First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	registrations := []models.Registration{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&registrations).Error
	return registrations, err
}

func (r *RegistrationRepository) TicketCodesByEvent(ctx context.Context, eventID uint) ([]string, error) {
	codes := []string{}
	err := r.db.WithContext(ctx).Model(&models.Registration{}).Where("event_id = ?", eventID).Order("id").Pluck("ticket_code", &codes).Error
	return codes, err
}

func (r *RegistrationRepository) DeleteByEvent(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Registration{}).Error
}

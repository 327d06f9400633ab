package repository

import (
	"context"

	"github.com/sefazor/eventreg-backend/internal/models"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := r.db.WithContext(ctx).Order("id").Find(&events).Error
	return events, err
}

// Overwrite replaces title, description and slots. Zero values are written
// too. It returns the number of rows touched.
func (r *EventRepository) Overwrite(ctx context.Context, id uint, title, description string, slots int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
		"slots":       slots,
	})
	return result.RowsAffected, result.Error
}

func (r *EventRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	return result.RowsAffected, result.Error
}

// TakeSlot decrements slots by one only while slots > 0. It reports false
// when no slot was left (or the event vanished).
func (r *EventRepository) TakeSlot(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND slots > 0", id).
		UpdateColumn("slots", gorm.Expr("slots - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

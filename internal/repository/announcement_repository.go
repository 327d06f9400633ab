package repository

import (
	"context"

	"github.com/sefazor/eventreg-backend/internal/models"
	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) WithTx(tx *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: tx}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *AnnouncementRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Announcement, error) {
	announcements := []models.Announcement{}
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&announcements).Error
	return announcements, err
}

func (r *AnnouncementRepository) DeleteByEvent(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Announcement{}).Error
}

package models

import (
	"time"
)

type Announcement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   uint      `json:"event_id" gorm:"not null;index"`
	Event     *Event    `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type AnnouncementRequest struct {
	Message string `json:"message" validate:"required,nonblank"`
}

package models

import (
	"time"
)

// Event slots hold the remaining capacity and never drop below zero.
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Slots       int       `json:"slots" gorm:"not null;check:chk_events_slots,slots >= 0"`
	CreatedBy   uint      `json:"created_by" gorm:"not null;index"`
	Creator     *User     `json:"-" gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRequest is the body of both create-event and update-event. Updates
// overwrite all three fields.
type EventRequest struct {
	Title       string `json:"title" validate:"required,nonblank,max=255"`
	Description string `json:"description"`
	Slots       *int   `json:"slots" validate:"required,gte=0"`
}

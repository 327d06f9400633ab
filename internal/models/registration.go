package models

import (
	"time"
)

// Registration is a user's ticket for an event. One per (user, event).
type Registration struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_registrations_user_event"`
	EventID    uint      `json:"event_id" gorm:"not null;uniqueIndex:idx_registrations_user_event;index"`
	TicketCode string    `json:"ticket_code" gorm:"type:varchar(36);uniqueIndex;not null"`
	User       *User     `json:"-" gorm:"foreignKey:UserID"`
	Event      *Event    `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegistrationResponse struct {
	Message string `json:"message"`
	Ticket  string `json:"ticket"`
}

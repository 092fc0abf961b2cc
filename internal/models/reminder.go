package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Reminder struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	TaskID       *uuid.UUID `json:"task_id" gorm:"type:uuid;index"`
	Title        string     `json:"title" gorm:"not null"`
	Message      string     `json:"message"`
	ReminderTime time.Time  `json:"reminder_time" gorm:"not null;index"`
	IsSent       bool       `json:"is_sent" gorm:"not null;default:false;index"`
	CreatedAt    time.Time  `json:"created_at"`
}

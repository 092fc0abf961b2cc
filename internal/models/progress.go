package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Progress is an append-only history; the most recent record by RecordedAt
// is the task's current progress.
type Progress struct {
	ID         uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	TaskID     uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	Percentage int       `json:"percentage" gorm:"not null;default:0"`
	Notes      string    `json:"notes"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null"`
}

package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Exam struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Subject   string    `json:"subject" gorm:"not null"`
	ExamType  string    `json:"exam_type"`
	ExamDate  time.Time `json:"exam_date" gorm:"not null"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

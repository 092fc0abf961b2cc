package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	CategoryGeneral    = "general"
	CategoryAssignment = "assignment"
	CategoryProject    = "project"
	CategoryExam       = "exam"
	CategoryCAT        = "cat"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"not null;default:'general'"`
	Priority    string    `json:"priority" gorm:"not null;default:'medium'"`
	Status      string    `json:"status" gorm:"not null;default:'pending'"`
	Deadline    time.Time `json:"deadline" gorm:"not null"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Reminders []Reminder `json:"reminders,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Progress  []Progress `json:"progress,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryGeneral, CategoryAssignment, CategoryProject, CategoryExam, CategoryCAT:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// IsOverdue reports whether the deadline has passed without completion.
func (t *Task) IsOverdue(now time.Time) bool {
	return now.After(t.Deadline) && t.Status != StatusCompleted
}

package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Username string    `json:"username" gorm:"uniqueIndex;not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`
	Password string    `json:"-" gorm:"not null"`

	FullName  string `json:"full_name"`
	ClassName string `json:"class_name"`

	TwoFactorSecret  string `json:"-"`
	TwoFactorEnabled bool   `json:"two_factor_enabled" gorm:"default:false"`

	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks     []Task     `json:"tasks,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reminders []Reminder `json:"reminders,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Progress  []Progress `json:"progress,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Exams     []Exam     `json:"exams,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsLocked reports whether the account lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

package services

import (
	"errors"
	"time"

	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ReminderInput struct {
	Title        string    `json:"title" binding:"required,max=200"`
	Message      string    `json:"message"`
	ReminderTime time.Time `json:"reminder_time" binding:"required"`
}

type ReminderService interface {
	CreateReminder(db *gorm.DB, userID uuid.UUID, input ReminderInput) (*models.Reminder, error)
	MarkSent(db *gorm.DB, reminderID uuid.UUID) error
	MarkSeen(db *gorm.DB, userID, reminderID uuid.UUID) error
	DueUnsent(db *gorm.DB, asOf time.Time) ([]models.Reminder, error)
	DueUnsentForUser(db *gorm.DB, userID uuid.UUID, asOf time.Time) ([]models.Reminder, error)
	Upcoming(db *gorm.DB, userID uuid.UUID) ([]models.Reminder, error)
	RecentPast(db *gorm.DB, userID uuid.UUID, limit int) ([]models.Reminder, error)
	DeleteReminder(db *gorm.DB, userID, reminderID uuid.UUID) error
}

type ReminderServiceImpl struct{}

func NewReminderService() *ReminderServiceImpl {
	return &ReminderServiceImpl{}
}

func (s *ReminderServiceImpl) CreateReminder(db *gorm.DB, userID uuid.UUID, input ReminderInput) (*models.Reminder, error) {
	reminder := models.Reminder{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		Title:        input.Title,
		Message:      input.Message,
		ReminderTime: input.ReminderTime.UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := db.Create(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// MarkSent flips the sent flag. The transition is monotonic: marking an
// already-sent reminder again is a no-op, not an error.
func (s *ReminderServiceImpl) MarkSent(db *gorm.DB, reminderID uuid.UUID) error {
	result := db.Model(&models.Reminder{}).
		Where("id = ?", reminderID).
		Update("is_sent", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Reminder{}).Where("id = ?", reminderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// MarkSeen is the user-facing variant of MarkSent with an ownership check.
func (s *ReminderServiceImpl) MarkSeen(db *gorm.DB, userID, reminderID uuid.UUID) error {
	var reminder models.Reminder
	if err := db.First(&reminder, "id = ?", reminderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if reminder.UserID != userID {
		return ErrUnauthorized
	}

	return s.MarkSent(db, reminderID)
}

func (s *ReminderServiceImpl) DueUnsent(db *gorm.DB, asOf time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.Where("reminder_time <= ? AND is_sent = ?", asOf.UTC(), false).
		Order("reminder_time asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderServiceImpl) DueUnsentForUser(db *gorm.DB, userID uuid.UUID, asOf time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.Where("user_id = ? AND reminder_time <= ? AND is_sent = ?", userID, asOf.UTC(), false).
		Order("reminder_time asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderServiceImpl) Upcoming(db *gorm.DB, userID uuid.UUID) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.Where("user_id = ? AND is_sent = ? AND reminder_time >= ?", userID, false, time.Now().UTC()).
		Order("reminder_time asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderServiceImpl) RecentPast(db *gorm.DB, userID uuid.UUID, limit int) ([]models.Reminder, error) {
	if limit <= 0 {
		limit = 10
	}

	var reminders []models.Reminder
	err := db.Where("user_id = ? AND (is_sent = ? OR reminder_time < ?)", userID, true, time.Now().UTC()).
		Order("reminder_time desc").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderServiceImpl) DeleteReminder(db *gorm.DB, userID, reminderID uuid.UUID) error {
	var reminder models.Reminder
	if err := db.First(&reminder, "id = ?", reminderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if reminder.UserID != userID {
		return ErrUnauthorized
	}

	return db.Delete(&reminder).Error
}

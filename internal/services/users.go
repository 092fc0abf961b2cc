package services

import (
	"errors"
	"strings"
	"time"

	"tasknest/backend/internal/config"
	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileUpdate struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FullName  string `json:"full_name" binding:"max=120"`
	ClassName string `json:"class_name" binding:"max=50"`
}

type UserService interface {
	GetProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	UpdateProfile(db *gorm.DB, userID uuid.UUID, update ProfileUpdate) (*models.User, error)
	ChangePassword(db *gorm.DB, userID uuid.UUID, currentPassword, newPassword string) error
	DeleteAccount(db *gorm.DB, userID uuid.UUID) error
}

type UserServiceImpl struct {
	cfg config.AuthConfig
}

func NewUserService(cfg config.AuthConfig) *UserServiceImpl {
	return &UserServiceImpl{cfg: cfg}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetProfile(db, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != "" {
		email := strings.ToLower(strings.TrimSpace(update.Email))
		if email != user.Email {
			var existing models.User
			if err := db.Where("email = ? AND id <> ?", email, userID).First(&existing).Error; err == nil {
				return nil, ErrDuplicateIdentity
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	user.FullName = strings.TrimSpace(update.FullName)
	user.ClassName = strings.TrimSpace(update.ClassName)
	user.UpdatedAt = time.Now().UTC()

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword re-hashes and replaces the stored hash after the current
// password is confirmed.
func (s *UserServiceImpl) ChangePassword(db *gorm.DB, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.GetProfile(db, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(user.Password, currentPassword) {
		return ErrInvalidCredentials
	}

	if len(newPassword) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BCryptCost)
	if err != nil {
		return err
	}

	return db.Model(user).Update("password", string(hashed)).Error
}

// DeleteAccount removes the user and every record they own in one
// transaction.
func (s *UserServiceImpl) DeleteAccount(db *gorm.DB, userID uuid.UUID) error {
	user, err := s.GetProfile(db, userID)
	if err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, model := range []interface{}{
		&models.Progress{},
		&models.Reminder{},
		&models.Task{},
		&models.Exam{},
		&models.Token{},
	} {
		if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Delete(user).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

package services

import (
	"testing"
	"time"

	"tasknest/backend/internal/cache"
	"tasknest/backend/internal/config"
	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Reminder{},
		&models.Progress{},
		&models.Exam{},
		&models.Token{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "test-secret-key-for-unit-tests",
		JWTIssuer:        "tasknest-backend",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		BCryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
		PendingLoginTTL:  5 * time.Minute,
		TOTPIssuer:       "TaskNest",
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.Must(uuid.NewV4()),
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hash),
		FullName:  "Test User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func newTestAuthService(pending cache.PendingLoginStore) *AuthServiceImpl {
	if pending == nil {
		pending = cache.NewMemoryPendingLoginStore(5 * time.Minute)
	}
	return NewAuthService(testAuthConfig(), pending)
}

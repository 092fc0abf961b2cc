package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tasknest/backend/internal/config"
	"tasknest/backend/internal/database"
	"tasknest/backend/internal/scheduler"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_DRIVER", "sqlite")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_DRIVER")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg == nil {
		t.Fatal("Configuration should not be nil")
	}
	if cfg.Scheduler.PollInterval != 30*time.Second {
		t.Errorf("Expected default poll interval 30s, got %v", cfg.Scheduler.PollInterval)
	}
}

func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:        "integration-test-secret",
		JWTIssuer:        "tasknest-backend",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		BCryptCost:       4,
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
		PendingLoginTTL:  5 * time.Minute,
		TOTPIssuer:       "TaskNest",
	}

	reminderService := services.NewReminderService()
	poller := scheduler.NewPoller(db, reminderService, nil, time.Second)

	return setupRouter(cfg, db, nil, reminderService, poller), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginAndTrackTask(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, "POST", "/api/auth/register", "", map[string]string{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"full_name": "Alice Chen",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Register: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login: expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if login.AccessToken == "" {
		t.Fatal("Expected access token after login")
	}

	w = doJSON(t, router, "POST", "/api/tasks", login.AccessToken, map[string]interface{}{
		"title":    "Finish lab report",
		"category": "assignment",
		"priority": "high",
		"deadline": time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create task: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, router, "GET", "/api/dashboard", login.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Dashboard: expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var stats struct {
		TotalTasks        int64 `json:"total_tasks"`
		PendingTasks      int64 `json:"pending_tasks"`
		UpcomingReminders []struct {
			Title string `json:"title"`
		} `json:"upcoming_reminders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode dashboard response: %v", err)
	}
	if stats.TotalTasks != 1 || stats.PendingTasks != 1 {
		t.Errorf("Expected 1 pending task, got %+v", stats)
	}
	if len(stats.UpcomingReminders) != 1 {
		t.Fatalf("Expected the derived reminder on the dashboard, got %d", len(stats.UpcomingReminders))
	}
	if stats.UpcomingReminders[0].Title != "Reminder: Finish lab report" {
		t.Errorf("Unexpected reminder title %q", stats.UpcomingReminders[0].Title)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, "GET", "/api/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected %d without token, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLockoutOverHTTP(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, "POST", "/api/auth/register", "", map[string]string{
		"username":  "bob",
		"email":     "bob@example.com",
		"password":  "secret123",
		"full_name": "Bob Lee",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Register: expected %d, got %d", http.StatusCreated, w.Code)
	}

	for i := 0; i < 4; i++ {
		w = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
			"username": "bob",
			"password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Attempt %d: expected %d, got %d", i+1, http.StatusUnauthorized, w.Code)
		}
	}

	w = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "bob",
		"password": "wrong",
	})
	if w.Code != http.StatusLocked {
		t.Fatalf("Fifth failure: expected %d, got %d", http.StatusLocked, w.Code)
	}

	// Correct password is refused while the lockout is open.
	w = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "bob",
		"password": "secret123",
	})
	if w.Code != http.StatusLocked {
		t.Errorf("During lockout: expected %d, got %d", http.StatusLocked, w.Code)
	}
}

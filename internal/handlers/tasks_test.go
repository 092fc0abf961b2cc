package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasknest/backend/internal/handlers"
	"tasknest/backend/internal/models"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type MockTaskService struct {
	shouldReturnError bool
	returnNotFound    bool
	tasks             []models.Task
	progress          []models.Progress
}

func (m *MockTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input services.TaskInput) (*models.Task, error) {
	if m.shouldReturnError {
		return nil, gorm.ErrInvalidData
	}
	if !input.Deadline.After(time.Now()) {
		return nil, &services.ValidationError{Field: "deadline", Message: "deadline must be in the future"}
	}
	task := models.Task{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   userID,
		Title:    input.Title,
		Status:   models.StatusPending,
		Deadline: input.Deadline,
	}
	m.tasks = append(m.tasks, task)
	return &task, nil
}

func (m *MockTaskService) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error) {
	if m.shouldReturnError {
		return nil, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return nil, services.ErrNotFound
	}
	for i := range m.tasks {
		if m.tasks[i].ID == taskID {
			return &m.tasks[i], nil
		}
	}
	return &models.Task{ID: taskID, Title: "Test Task", Status: models.StatusPending}, nil
}

func (m *MockTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, status, category string) ([]models.Task, error) {
	if m.shouldReturnError {
		return nil, gorm.ErrInvalidData
	}
	return m.tasks, nil
}

func (m *MockTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input services.TaskInput) (*models.Task, error) {
	if m.shouldReturnError {
		return nil, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return nil, services.ErrNotFound
	}
	return &models.Task{ID: taskID, Title: input.Title, Deadline: input.Deadline}, nil
}

func (m *MockTaskService) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	if m.shouldReturnError {
		return gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return services.ErrNotFound
	}
	return nil
}

func (m *MockTaskService) CompleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	if m.returnNotFound {
		return services.ErrNotFound
	}
	return nil
}

func (m *MockTaskService) SetStatus(db *gorm.DB, userID, taskID uuid.UUID, status string) error {
	if !models.ValidStatus(status) {
		return &services.ValidationError{Field: "status", Message: "unknown status"}
	}
	if m.returnNotFound {
		return services.ErrNotFound
	}
	return nil
}

func (m *MockTaskService) RecordProgress(db *gorm.DB, userID, taskID uuid.UUID, percentage int, notes string) (*models.Progress, error) {
	if percentage < 0 || percentage > 100 || percentage%10 != 0 {
		return nil, &services.ValidationError{Field: "percentage", Message: "percentage must be a multiple of 10 between 0 and 100"}
	}
	record := models.Progress{ID: uuid.Must(uuid.NewV4()), TaskID: taskID, Percentage: percentage, Notes: notes}
	m.progress = append(m.progress, record)
	return &record, nil
}

func (m *MockTaskService) ProgressHistory(db *gorm.DB, userID, taskID uuid.UUID) ([]models.Progress, error) {
	if m.returnNotFound {
		return nil, services.ErrNotFound
	}
	return m.progress, nil
}

type MockDashboardService struct {
	invalidations int
	stats         *services.DashboardStats
}

func (m *MockDashboardService) Stats(db *gorm.DB, userID uuid.UUID) (*services.DashboardStats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &services.DashboardStats{}, nil
}

func (m *MockDashboardService) Invalidate(userID uuid.UUID) {
	m.invalidations++
}

func setupTaskHandler() (*handlers.TaskHandler, *MockTaskService, *MockDashboardService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}
	mockDashboard := &MockDashboardService{}
	handler := handlers.NewTaskHandler(nil, mockService, mockDashboard)
	router := gin.New()

	// Stand-in for the auth middleware
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()))
		c.Next()
	})

	return handler, mockService, mockDashboard, router
}

func TestCreateTask(t *testing.T) {
	handler, _, mockDashboard, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	input := services.TaskInput{
		Title:    "Finish lab report",
		Category: models.CategoryAssignment,
		Priority: models.PriorityHigh,
		Deadline: time.Now().Add(48 * time.Hour),
	}

	inputJSON, _ := json.Marshal(input)
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(inputJSON))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if mockDashboard.invalidations != 1 {
		t.Errorf("Expected 1 dashboard invalidation, got %d", mockDashboard.invalidations)
	}
}

func TestCreateTaskInvalidJSON(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateTaskPastDeadline(t *testing.T) {
	handler, _, mockDashboard, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	input := services.TaskInput{
		Title:    "Too late",
		Deadline: time.Now().Add(-time.Hour),
	}

	inputJSON, _ := json.Marshal(input)
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(inputJSON))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if mockDashboard.invalidations != 0 {
		t.Errorf("Expected no dashboard invalidation on failure, got %d", mockDashboard.invalidations)
	}
}

func TestGetTask(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.GET("/tasks/:id", handler.GetTask)

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var responseTask models.Task
	err := json.Unmarshal(w.Body.Bytes(), &responseTask)
	if err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}

	if responseTask.Title != "Test Task" {
		t.Errorf("Expected title 'Test Task', got '%s'", responseTask.Title)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	handler, mockService, _, router := setupTaskHandler()

	router.GET("/tasks/:id", handler.GetTask)

	mockService.returnNotFound = true

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestListTasks(t *testing.T) {
	handler, mockService, _, router := setupTaskHandler()

	router.GET("/tasks", handler.ListTasks)

	mockService.tasks = []models.Task{
		{Title: "Task 1", Status: models.StatusPending},
		{Title: "Task 2", Status: models.StatusCompleted},
	}

	req, _ := http.NewRequest("GET", "/tasks?status=all&category=all", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	if err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}

	if response["total"] != float64(2) {
		t.Errorf("Expected total 2, got %v", response["total"])
	}
}

func TestUpdateTask(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.PUT("/tasks/:id", handler.UpdateTask)

	taskID := uuid.Must(uuid.NewV4())
	input := services.TaskInput{
		Title:    "Updated Task",
		Deadline: time.Now().Add(24 * time.Hour),
	}

	inputJSON, _ := json.Marshal(input)
	req, _ := http.NewRequest("PUT", "/tasks/"+taskID.String(), bytes.NewBuffer(inputJSON))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.DELETE("/tasks/:id", handler.DeleteTask)

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("DELETE", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.PATCH("/tasks/:id/status", handler.SetStatus)

	body, _ := json.Marshal(handlers.StatusRequest{Status: "archived"})
	req, _ := http.NewRequest("PATCH", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRecordProgress(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.POST("/tasks/:id/progress", handler.RecordProgress)

	body, _ := json.Marshal(handlers.ProgressRequest{Percentage: 50, Notes: "halfway"})
	req, _ := http.NewRequest("POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestRecordProgressRejectsOddStep(t *testing.T) {
	handler, _, _, router := setupTaskHandler()

	router.POST("/tasks/:id/progress", handler.RecordProgress)

	body, _ := json.Marshal(handlers.ProgressRequest{Percentage: 55})
	req, _ := http.NewRequest("POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCalendarEvents(t *testing.T) {
	handler, mockService, _, router := setupTaskHandler()

	router.GET("/calendar/events", handler.CalendarEvents)

	mockService.tasks = []models.Task{
		{ID: uuid.Must(uuid.NewV4()), Title: "Midterm prep", Priority: models.PriorityHigh, Deadline: time.Now().Add(72 * time.Hour)},
	}

	req, _ := http.NewRequest("GET", "/calendar/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var events []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0]["className"] != "task-high" {
		t.Errorf("Expected className 'task-high', got %v", events[0]["className"])
	}
}

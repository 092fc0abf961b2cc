package services

import (
	"errors"
	"time"

	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (*models.Task, error)
	GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, status, category string) ([]models.Task, error)
	UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (*models.Task, error)
	DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error
	CompleteTask(db *gorm.DB, userID, taskID uuid.UUID) error
	SetStatus(db *gorm.DB, userID, taskID uuid.UUID, status string) error
	RecordProgress(db *gorm.DB, userID, taskID uuid.UUID, percentage int, notes string) (*models.Progress, error)
	ProgressHistory(db *gorm.DB, userID, taskID uuid.UUID) ([]models.Progress, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func normalizeTaskInput(input *TaskInput) error {
	if input.Category == "" {
		input.Category = models.CategoryGeneral
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.ValidCategory(input.Category) {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if !models.ValidPriority(input.Priority) {
		return &ValidationError{Field: "priority", Message: "unknown priority"}
	}
	return nil
}

// CreateTask persists the task and, when deadline-24h is still in the
// future, a derived reminder, in one transaction.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (*models.Task, error) {
	if err := normalizeTaskInput(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	deadline := input.Deadline.UTC()
	if !deadline.After(now) {
		return nil, &ValidationError{Field: "deadline", Message: "deadline must be in the future"}
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      models.StatusPending,
		Deadline:    deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	reminderTime := deadline.Add(-24 * time.Hour)
	if reminderTime.After(now) {
		reminder := models.Reminder{
			ID:           uuid.Must(uuid.NewV4()),
			UserID:       userID,
			TaskID:       &task.ID,
			Title:        "Reminder: " + task.Title,
			Message:      "Your task '" + task.Title + "' is due tomorrow!",
			ReminderTime: reminderTime,
			CreatedAt:    now,
		}
		if err := tx.Create(&reminder).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrUnauthorized
	}
	return &task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, status, category string) ([]models.Task, error) {
	query := db.Where("user_id = ?", userID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var tasks []models.Task
	if err := query.Order("deadline asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (*models.Task, error) {
	if err := normalizeTaskInput(&input); err != nil {
		return nil, err
	}

	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Category = input.Category
	task.Priority = input.Priority
	task.Deadline = input.Deadline.UTC()
	task.UpdatedAt = time.Now().UTC()

	if err := db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task together with its reminders and progress
// history.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("task_id = ?", task.ID).Delete(&models.Reminder{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("task_id = ?", task.ID).Delete(&models.Progress{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(task).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// CompleteTask marks the task completed and appends a 100% progress record
// unless the latest record already reads 100.
func (s *TaskServiceImpl) CompleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	updates := map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": now,
		"updated_at":   now,
	}
	if err := tx.Model(task).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}

	var latest models.Progress
	err = tx.Where("task_id = ?", task.ID).Order("recorded_at desc").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && latest.Percentage != 100) {
		record := models.Progress{
			ID:         uuid.Must(uuid.NewV4()),
			UserID:     userID,
			TaskID:     task.ID,
			Percentage: 100,
			Notes:      "Task completed",
			RecordedAt: now,
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return err
		}
	} else if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// SetStatus applies an explicit status transition. Leaving completed
// clears completed_at; entering it sets the timestamp.
func (s *TaskServiceImpl) SetStatus(db *gorm.DB, userID, taskID uuid.UUID, status string) error {
	if !models.ValidStatus(status) {
		return &ValidationError{Field: "status", Message: "unknown status"}
	}

	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if status == models.StatusCompleted {
		updates["completed_at"] = now
	} else {
		updates["completed_at"] = nil
	}

	return db.Model(task).Updates(updates).Error
}

// RecordProgress appends a progress record and derives any status change:
// 100 completes the task, a positive value moves a pending task to
// in_progress.
func (s *TaskServiceImpl) RecordProgress(db *gorm.DB, userID, taskID uuid.UUID, percentage int, notes string) (*models.Progress, error) {
	if percentage < 0 || percentage > 100 || percentage%10 != 0 {
		return nil, &ValidationError{Field: "percentage", Message: "progress must be 0-100 in steps of 10"}
	}

	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := models.Progress{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     userID,
		TaskID:     task.ID,
		Percentage: percentage,
		Notes:      notes,
		RecordedAt: now,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": now}
	if percentage == 100 {
		updates["status"] = models.StatusCompleted
		updates["completed_at"] = now
	} else if percentage > 0 && task.Status == models.StatusPending {
		updates["status"] = models.StatusInProgress
	}

	if err := tx.Model(task).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *TaskServiceImpl) ProgressHistory(db *gorm.DB, userID, taskID uuid.UUID) ([]models.Progress, error) {
	if _, err := s.GetTask(db, userID, taskID); err != nil {
		return nil, err
	}

	var records []models.Progress
	if err := db.Where("task_id = ?", taskID).Order("recorded_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

package handlers

import (
	"net/http"

	"tasknest/backend/internal/middleware"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	dashboard   services.DashboardService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, dashboard services.DashboardService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, dashboard: dashboard}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(h.db, userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, err := h.taskService.GetTask(h.db, userID, uuid.FromStringOrNil(c.Param("id")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	status := c.DefaultQuery("status", "all")
	category := c.DefaultQuery("category", "all")

	tasks, err := h.taskService.ListTasks(h.db, userID, status, category)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, userID, uuid.FromStringOrNil(c.Param("id")), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.taskService.DeleteTask(h.db, userID, uuid.FromStringOrNil(c.Param("id"))); err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.taskService.CompleteTask(h.db, userID, uuid.FromStringOrNil(c.Param("id"))); err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Task marked as complete!"})
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) SetStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.taskService.SetStatus(h.db, userID, uuid.FromStringOrNil(c.Param("id")), req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated"})
}

type ProgressRequest struct {
	Percentage int    `json:"percentage"`
	Notes      string `json:"notes"`
}

func (h *TaskHandler) RecordProgress(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.taskService.RecordProgress(h.db, userID, uuid.FromStringOrNil(c.Param("id")), req.Percentage, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusCreated, record)
}

func (h *TaskHandler) ProgressHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	records, err := h.taskService.ProgressHistory(h.db, userID, uuid.FromStringOrNil(c.Param("id")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CalendarEvents renders the user's tasks as calendar event objects.
func (h *TaskHandler) CalendarEvents(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tasks, err := h.taskService.ListTasks(h.db, userID, "all", "all")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		events = append(events, gin.H{
			"id":        task.ID,
			"title":     task.Title,
			"start":     task.Deadline,
			"className": "task-" + task.Priority,
			"category":  task.Category,
			"status":    task.Status,
		})
	}

	c.JSON(http.StatusOK, events)
}

func (h *TaskHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := h.dashboard.Stats(h.db, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

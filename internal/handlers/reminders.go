package handlers

import (
	"net/http"
	"time"

	"tasknest/backend/internal/middleware"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ReminderHandler struct {
	db              *gorm.DB
	reminderService services.ReminderService
	dashboard       services.DashboardService
}

func NewReminderHandler(db *gorm.DB, reminderService services.ReminderService, dashboard services.DashboardService) *ReminderHandler {
	return &ReminderHandler{db: db, reminderService: reminderService, dashboard: dashboard}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input services.ReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderService.CreateReminder(h.db, userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusCreated, reminder)
}

// ListReminders returns the upcoming unsent reminders together with a
// short history of past ones.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	upcoming, err := h.reminderService.Upcoming(h.db, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	past, err := h.reminderService.RecentPast(h.db, userID, 10)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upcoming": upcoming,
		"past":     past,
	})
}

// DueReminders is the polling feed: every due, unsent reminder for the
// current user as of now.
func (h *ReminderHandler) DueReminders(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	due, err := h.reminderService.DueUnsentForUser(h.db, userID, time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, due)
}

// MarkSeen flips a reminder to sent on behalf of the user; repeating the
// call is a no-op.
func (h *ReminderHandler) MarkSeen(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.reminderService.MarkSeen(h.db, userID, uuid.FromStringOrNil(c.Param("id"))); err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.reminderService.DeleteReminder(h.db, userID, uuid.FromStringOrNil(c.Param("id"))); err != nil {
		respondServiceError(c, err)
		return
	}

	h.dashboard.Invalidate(userID)
	c.JSON(http.StatusNoContent, nil)
}

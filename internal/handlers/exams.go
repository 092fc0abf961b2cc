package handlers

import (
	"net/http"

	"tasknest/backend/internal/middleware"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ExamHandler struct {
	db          *gorm.DB
	examService services.ExamService
}

func NewExamHandler(db *gorm.DB, examService services.ExamService) *ExamHandler {
	return &ExamHandler{db: db, examService: examService}
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input services.ExamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam, err := h.examService.CreateExam(h.db, userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

func (h *ExamHandler) ListExams(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	exams, err := h.examService.ListExams(h.db, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *ExamHandler) UpdateExam(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input services.ExamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam, err := h.examService.UpdateExam(h.db, userID, uuid.FromStringOrNil(c.Param("id")), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) DeleteExam(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.examService.DeleteExam(h.db, userID, uuid.FromStringOrNil(c.Param("id"))); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

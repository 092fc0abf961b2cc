package handlers

import (
	"net/http"

	"tasknest/backend/internal/middleware"
	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TwoFactorHandler struct {
	db               *gorm.DB
	twoFactorService services.TwoFactorService
}

func NewTwoFactorHandler(db *gorm.DB, twoFactorService services.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{db: db, twoFactorService: twoFactorService}
}

type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// Setup returns the provisioning payload; calling it again before
// confirmation returns the same secret.
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	payload, err := h.twoFactorService.BeginEnrollment(h.db, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *TwoFactorHandler) Enable(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "A 6-digit code is required",
		})
		return
	}

	if err := h.twoFactorService.ConfirmEnrollment(h.db, userID, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

func (h *TwoFactorHandler) Disable(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "A 6-digit code is required",
		})
		return
	}

	if err := h.twoFactorService.Disable(h.db, userID, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication disabled"})
}

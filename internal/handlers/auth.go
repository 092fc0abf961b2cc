package handlers

import (
	"net/http"
	"strings"

	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	User         *UserProfileResponse `json:"user"`
}

type VerifySecondFactorRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	result, err := h.authService.Authenticate(h.db, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process login",
		})
		return
	}

	switch result.Outcome {
	case services.OutcomeLocked:
		c.JSON(http.StatusLocked, gin.H{
			"error":             "account_locked",
			"message":           "Account locked, try again later",
			"remaining_minutes": result.RemainingMinutes,
		})

	case services.OutcomeRejected:
		body := gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password",
		}
		if result.RemainingAttempts > 0 {
			body["remaining_attempts"] = result.RemainingAttempts
		}
		c.JSON(http.StatusUnauthorized, body)

	case services.OutcomeNeedsSecondFactor:
		c.JSON(http.StatusOK, gin.H{
			"status":       "second_factor_required",
			"challenge_id": result.ChallengeID,
		})

	case services.OutcomeAdmitted:
		h.admit(c, result)
	}
}

func (h *AuthHandler) VerifySecondFactor(c *gin.Context) {
	var req VerifySecondFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.VerifySecondFactor(h.db, req.ChallengeID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.admit(c, &services.LoginResult{Outcome: services.OutcomeAdmitted, User: user})
}

func (h *AuthHandler) admit(c *gin.Context, result *services.LoginResult) {
	accessToken, refreshToken, err := h.authService.GenerateToken(h.db, result.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication tokens",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User:         newUserProfileResponse(result.User),
	})
}

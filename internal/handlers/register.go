package handlers

import (
	"log"
	"net/http"

	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService}
}

type RegistrationResponse struct {
	Message string               `json:"message"`
	User    *UserProfileResponse `json:"user"`
}

func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		log.Printf("Registration error: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Message: "Account created successfully! Please log in.",
		User:    newUserProfileResponse(user),
	})
}

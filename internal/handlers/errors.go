package handlers

import (
	"errors"
	"net/http"

	"tasknest/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service-layer errors onto HTTP responses.
// Anything unrecognized is reported as a generic failure without leaking
// internal detail.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var locked *services.AccountLockedError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": ve.Error(),
		})
	case errors.As(err, &locked):
		c.JSON(http.StatusLocked, gin.H{
			"error":             "account_locked",
			"message":           locked.Error(),
			"remaining_minutes": locked.RemainingMinutes,
		})
	case errors.Is(err, services.ErrDuplicateIdentity):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "duplicate_identity",
			"message": "Username or email already exists",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password",
		})
	case errors.Is(err, services.ErrInvalidSecondFactor):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_second_factor",
			"message": "Invalid verification code",
		})
	case errors.Is(err, services.ErrPendingLoginExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "challenge_expired",
			"message": "Login challenge expired, please sign in again",
		})
	case errors.Is(err, services.ErrTwoFactorNotEnrolled):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "two_factor_not_enrolled",
			"message": "Two-factor authentication is not set up",
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You do not have permission to access this resource",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Record not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process request",
		})
	}
}

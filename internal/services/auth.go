package services

import (
	"errors"
	"math"
	"time"

	"tasknest/backend/internal/cache"
	"tasknest/backend/internal/config"
	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginOutcome string

const (
	OutcomeAdmitted          LoginOutcome = "admitted"
	OutcomeNeedsSecondFactor LoginOutcome = "needs_second_factor"
	OutcomeLocked            LoginOutcome = "locked"
	OutcomeRejected          LoginOutcome = "rejected"
)

// LoginResult is the terminal state of one pass through the login flow.
type LoginResult struct {
	Outcome           LoginOutcome
	User              *models.User
	ChallengeID       string // set when Outcome == OutcomeNeedsSecondFactor
	RemainingMinutes  int    // set when Outcome == OutcomeLocked
	RemainingAttempts int    // set when Outcome == OutcomeRejected for a known user
}

type AuthService interface {
	Authenticate(db *gorm.DB, username, password string) (*LoginResult, error)
	VerifySecondFactor(db *gorm.DB, challengeID, code string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error)
	RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
	RevokeRefreshTokens(db *gorm.DB, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	cfg       config.AuthConfig
	pending   cache.PendingLoginStore
	twoFactor *TwoFactorServiceImpl
}

func NewAuthService(cfg config.AuthConfig, pending cache.PendingLoginStore) *AuthServiceImpl {
	return &AuthServiceImpl{
		cfg:       cfg,
		pending:   pending,
		twoFactor: NewTwoFactorService(cfg),
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// Authenticate runs the password step of the login flow. Counter and
// lockout changes are committed before the result is returned, including
// on failed attempts.
func (s *AuthServiceImpl) Authenticate(db *gorm.DB, username, password string) (*LoginResult, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response as a wrong password; never reveal which
			// field was wrong.
			return &LoginResult{Outcome: OutcomeRejected}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()

	if user.IsLocked(now) {
		remaining := int(math.Ceil(user.LockedUntil.Sub(now).Seconds() / 60))
		return &LoginResult{Outcome: OutcomeLocked, RemainingMinutes: remaining}, nil
	}

	if user.LockedUntil != nil {
		// Lockout elapsed; clear it before checking the password.
		updates := map[string]interface{}{
			"locked_until":          nil,
			"failed_login_attempts": 0,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		user.LockedUntil = nil
		user.FailedLoginAttempts = 0
	}

	if !VerifyPassword(user.Password, password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= s.cfg.MaxLoginAttempts {
			until := now.Add(s.cfg.LockoutDuration)
			updates := map[string]interface{}{
				"failed_login_attempts": 0,
				"locked_until":          until,
			}
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				return nil, err
			}
			remaining := int(math.Ceil(s.cfg.LockoutDuration.Seconds() / 60))
			return &LoginResult{Outcome: OutcomeLocked, RemainingMinutes: remaining}, nil
		}

		if err := db.Model(&user).Update("failed_login_attempts", user.FailedLoginAttempts).Error; err != nil {
			return nil, err
		}
		return &LoginResult{
			Outcome:           OutcomeRejected,
			RemainingAttempts: s.cfg.MaxLoginAttempts - user.FailedLoginAttempts,
		}, nil
	}

	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil

	if user.TwoFactorEnabled {
		challengeID, err := s.pending.Create(user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			Outcome:     OutcomeNeedsSecondFactor,
			User:        &user,
			ChallengeID: challengeID,
		}, nil
	}

	if err := s.recordLogin(db, &user, now); err != nil {
		return nil, err
	}

	return &LoginResult{Outcome: OutcomeAdmitted, User: &user}, nil
}

// VerifySecondFactor completes a login that is awaiting its second factor.
// A wrong code leaves the pending slot intact and never touches the
// password lockout counter.
func (s *AuthServiceImpl) VerifySecondFactor(db *gorm.DB, challengeID, code string) (*models.User, error) {
	userID, err := s.pending.Get(challengeID)
	if err != nil {
		if errors.Is(err, cache.ErrPendingNotFound) {
			return nil, ErrPendingLoginExpired
		}
		return nil, err
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingLoginExpired
		}
		return nil, err
	}

	if !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return nil, ErrTwoFactorNotEnrolled
	}

	if !s.twoFactor.ValidateCode(user.TwoFactorSecret, code) {
		return nil, ErrInvalidSecondFactor
	}

	if err := s.pending.Delete(challengeID); err != nil {
		return nil, err
	}

	if err := s.recordLogin(db, &user, time.Now().UTC()); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *AuthServiceImpl) recordLogin(db *gorm.DB, user *models.User, now time.Time) error {
	if err := db.Model(user).Update("last_login_at", now).Error; err != nil {
		return err
	}
	user.LastLoginAt = &now
	return nil
}

func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	accessTokenClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     s.cfg.JWTIssuer,
		"exp":     time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenUUID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		RefreshToken: refreshTokenUUID,
		ExpiresAt:    time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenUUID.String(), nil
}

func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	var token models.Token
	err := db.Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).First(&token).Error
	if err != nil {
		return "", "", 0, err
	}

	accessToken, newRefreshToken, err := s.GenerateToken(db, token.UserID)
	if err != nil {
		return "", "", 0, err
	}

	db.Delete(&token)

	return accessToken, newRefreshToken, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	return db.Where("refresh_token = ?", refreshToken).Delete(&models.Token{}).Error
}

func (s *AuthServiceImpl) RevokeRefreshTokens(db *gorm.DB, userID uuid.UUID) error {
	return db.Where("user_id = ?", userID).Delete(&models.Token{}).Error
}

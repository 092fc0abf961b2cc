package services

import (
	"errors"
	"net/url"
	"time"

	"tasknest/backend/internal/config"
	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// EnrollmentPayload is everything a client needs to provision an
// authenticator app: the raw secret for manual entry and the otpauth URL
// renderable as a QR code.
type EnrollmentPayload struct {
	Secret          string `json:"secret"`
	ProvisioningURL string `json:"provisioning_url"`
	Issuer          string `json:"issuer"`
	AccountName     string `json:"account_name"`
}

type TwoFactorService interface {
	BeginEnrollment(db *gorm.DB, userID uuid.UUID) (*EnrollmentPayload, error)
	ConfirmEnrollment(db *gorm.DB, userID uuid.UUID, code string) error
	Disable(db *gorm.DB, userID uuid.UUID, code string) error
}

type TwoFactorServiceImpl struct {
	cfg config.AuthConfig
}

func NewTwoFactorService(cfg config.AuthConfig) *TwoFactorServiceImpl {
	return &TwoFactorServiceImpl{cfg: cfg}
}

// BeginEnrollment generates the shared secret, reusing an existing one so
// repeated setup requests keep showing the same QR code.
func (s *TwoFactorServiceImpl) BeginEnrollment(db *gorm.DB, userID uuid.UUID) (*EnrollmentPayload, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.TwoFactorSecret == "" {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.cfg.TOTPIssuer,
			AccountName: user.Email,
		})
		if err != nil {
			return nil, err
		}

		if err := db.Model(&user).Update("two_factor_secret", key.Secret()).Error; err != nil {
			return nil, err
		}
		user.TwoFactorSecret = key.Secret()
	}

	key, err := otp.NewKeyFromURL(provisioningURL(s.cfg.TOTPIssuer, user.Email, user.TwoFactorSecret))
	if err != nil {
		return nil, err
	}

	return &EnrollmentPayload{
		Secret:          user.TwoFactorSecret,
		ProvisioningURL: key.URL(),
		Issuer:          s.cfg.TOTPIssuer,
		AccountName:     user.Email,
	}, nil
}

// ConfirmEnrollment flips the enabled flag once the user proves possession
// of the secret with a valid code.
func (s *TwoFactorServiceImpl) ConfirmEnrollment(db *gorm.DB, userID uuid.UUID, code string) error {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnrolled
	}

	if !s.ValidateCode(user.TwoFactorSecret, code) {
		return ErrInvalidSecondFactor
	}

	return db.Model(&user).Update("two_factor_enabled", true).Error
}

// Disable turns two-factor off after one last valid code and discards the
// secret so a later re-enrollment starts fresh.
func (s *TwoFactorServiceImpl) Disable(db *gorm.DB, userID uuid.UUID, code string) error {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !user.TwoFactorEnabled {
		return ErrTwoFactorNotEnrolled
	}

	if !s.ValidateCode(user.TwoFactorSecret, code) {
		return ErrInvalidSecondFactor
	}

	updates := map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
	}
	return db.Model(&user).Updates(updates).Error
}

// ValidateCode accepts a 6-digit code from the current time step or either
// adjacent one. Replay inside that window is tolerated.
func (s *TwoFactorServiceImpl) ValidateCode(secret, code string) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

func provisioningURL(issuer, account, secret string) string {
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	params.Set("algorithm", "SHA1")
	params.Set("digits", "6")
	params.Set("period", "30")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: params.Encode(),
	}
	return u.String()
}

package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gorm.io/gorm"

	"forms-management-api/models"
)

const (
	otpLength = 6
	otpTTL    = 5 * time.Minute
)

// OTPService issues and verifies single-use login codes for users with
// two-factor login enabled. Delivery is logged; wiring a real SMS
// gateway is a deployment concern.
type OTPService struct {
	db *gorm.DB
}

func NewOTPService(db *gorm.DB) *OTPService {
	return &OTPService{db: db}
}

// Issue creates a fresh code for the user and "sends" it.
func (s *OTPService) Issue(user *models.User) error {
	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	otp := models.OTPCode{
		UserID:    user.UserID,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
		CreateAt:  time.Now(),
	}
	if err := s.db.Create(&otp).Error; err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	log.Printf("SMS to %s: your OTP code is %s", phone, code)
	return nil
}

// Verify consumes a valid, unexpired code. A used or expired code is
// rejected and left untouched.
func (s *OTPService) Verify(userID int, code string) error {
	var otp models.OTPCode
	err := s.db.
		Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?", userID, code, false, time.Now()).
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewValidationError("otp_code", "invalid or expired OTP code")
	}
	if err != nil {
		return fmt.Errorf("failed to look up otp: %w", err)
	}

	otp.Used = true
	if err := s.db.Save(&otp).Error; err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	return nil
}

func generateOTPCode() (string, error) {
	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0') + byte(n.Int64())
	}
	return string(digits), nil
}

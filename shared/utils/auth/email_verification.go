package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/database/models/auth"
)

// CreateEmailVerificationToken creates a new email verification token for a user
func CreateEmailVerificationToken(db *gorm.DB, userID uuid.UUID) (*auth.EmailVerificationToken, error) {
	token, err := GenerateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	verificationToken := &auth.EmailVerificationToken{
		UserID:    userID,
		Token:     token,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Verified:  false,
	}

	if err := db.Create(verificationToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	return verificationToken, nil
}

// VerifyEmailToken consumes a verification token and marks the user verified.
func VerifyEmailToken(db *gorm.DB, token string) (*models.User, error) {
	var verificationToken auth.EmailVerificationToken

	if err := db.Where("token = ? AND verified = ? AND expires_at > ?",
		token, false, time.Now()).First(&verificationToken).Error; err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	now := time.Now()
	verificationToken.Verified = true
	verificationToken.VerifiedAt = &now
	if err := db.Save(&verificationToken).Error; err != nil {
		return nil, fmt.Errorf("failed to update token: %w", err)
	}

	var user models.User
	if err := db.First(&user, verificationToken.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.EmailVerified = true
	if err := db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to verify user email: %w", err)
	}

	return &user, nil
}

// InvalidateOldVerificationTokens marks all outstanding tokens for a user as consumed
func InvalidateOldVerificationTokens(db *gorm.DB, userID uuid.UUID) error {
	return db.Model(&auth.EmailVerificationToken{}).
		Where("user_id = ? AND verified = ?", userID, false).
		Update("verified", true).Error
}

// CleanupExpiredTokens removes expired verification tokens, password
// reset tokens and sessions.
func CleanupExpiredTokens(db *gorm.DB) error {
	now := time.Now()
	if err := db.Where("expires_at < ?", now).Delete(&auth.EmailVerificationToken{}).Error; err != nil {
		return err
	}
	if err := db.Where("expires_at < ?", now).Delete(&auth.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return db.Where("expires_at < ?", now).Delete(&auth.UserSession{}).Error
}

package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dwellport-backend/shared/clients"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/database/models/auth"
	utils "dwellport-backend/shared/utils/auth"
)

const resetTokenTTL = time.Hour

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// ChangePassword changes a user's password after verifying the current password
// @Summary Change password
// @Description Change user's password after verifying current password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Password change data"
// @Success 200 {object} map[string]string "Password changed successfully"
// @Failure 400 {object} map[string]string "Invalid request format or validation error"
// @Failure 401 {object} map[string]string "User not authenticated or incorrect password"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Failed to update password"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}
	if req.CurrentPassword == req.NewPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be different from current password"})
		return
	}

	if err := h.storeNewPassword(&user, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Log the user out of every other device
	currentTokenHash, _ := c.Get("tokenHash")
	h.db.Model(&auth.UserSession{}).
		Where("user_id = ? AND token_hash != ?", userID, currentTokenHash).
		Update("is_active", false)

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword initiates the password reset process by sending a reset link to the user's email
// @Summary Forgot password
// @Description Initiates password reset process by sending a reset link to the user's email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Email for password reset"
// @Success 200 {object} map[string]string "Password reset email sent"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 429 {object} map[string]string "Too many password reset attempts"
// @Failure 500 {object} map[string]string "Failed to process request"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Same response whether or not the email exists
	neutral := gin.H{"message": "If a user with this email exists, a password reset link will be sent"}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, neutral)
		return
	}

	resetToken, err := h.issueResetToken(user.ID, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create reset token"})
		return
	}

	notificationClient := clients.NewNotificationClient()
	if err := notificationClient.SendPasswordResetEmail(user.Email, user.FirstName, resetToken.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send reset email"})
		return
	}

	c.JSON(http.StatusOK, neutral)
}

// ResetPassword resets a user's password using a valid reset token
// @Summary Reset password
// @Description Reset user's password using a valid reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Password reset data with token"
// @Success 200 {object} map[string]string "Password reset successful"
// @Failure 400 {object} map[string]string "Invalid request format or token"
// @Failure 500 {object} map[string]string "Failed to update password"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.consumableResetToken(req.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.storeNewPassword(user, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Consume the token and end every session for the account
	h.db.Model(&auth.PasswordResetToken{}).
		Where("token = ?", req.Token).
		Updates(map[string]interface{}{"used": true, "used_at": time.Now()})
	h.db.Model(&auth.UserSession{}).
		Where("user_id = ?", user.ID).
		Update("is_active", false)

	// Proving control of the mailbox also clears the lockout bookkeeping,
	// so a locked-out owner can get back in without waiting for an admin.
	if _, err := h.guard.RecordSuccessfulLogin(c.Request.Context(), user.ID.String()); err != nil {
		log.Printf("⚠️ Failed to clear lockout state for %s after password reset: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful. You can now log in with your new password."})
}

// storeNewPassword validates, hashes and persists a replacement password.
func (h *AuthHandler) storeNewPassword(user *models.User, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password")
	}
	if err := h.db.Model(user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("could not update password")
	}
	return nil
}

// issueResetToken invalidates any outstanding reset tokens for the user
// and creates a fresh one bound to the requesting IP.
func (h *AuthHandler) issueResetToken(userID uuid.UUID, ipAddress string) (*auth.PasswordResetToken, error) {
	if err := h.db.Model(&auth.PasswordResetToken{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error; err != nil {
		return nil, err
	}

	tokenString, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}

	resetToken := auth.PasswordResetToken{
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(resetTokenTTL),
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
	}
	if err := h.db.Create(&resetToken).Error; err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// consumableResetToken resolves an unused, unexpired reset token to its user.
func (h *AuthHandler) consumableResetToken(token string) (*models.User, error) {
	var resetToken auth.PasswordResetToken
	if err := h.db.Where("token = ? AND used = ?", token, false).First(&resetToken).Error; err != nil {
		return nil, fmt.Errorf("invalid or expired reset token")
	}
	if resetToken.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("password reset token has expired")
	}

	var user models.User
	if err := h.db.First(&user, resetToken.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	nconfig "dwellport-backend/notification-service/config"
	"dwellport-backend/notification-service/services"

	"github.com/gin-gonic/gin"
)

// EmailHandler handles email-related HTTP requests
type EmailHandler struct {
	emailService *services.EmailService
	config       *nconfig.NotificationConfig
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService *services.EmailService, cfg *nconfig.NotificationConfig) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		config:       cfg,
	}
}

// Request structures for the convenience endpoints

type VerificationEmailRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Name             string `json:"name" binding:"required"`
	VerificationCode string `json:"verification_code" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Token string `json:"token" binding:"required"`
}

type LockoutAlertEmailRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"required"`
	FailedCount  int    `json:"failed_count" binding:"required"`
	IPAddress    string `json:"ip_address"`
	LockedAt     string `json:"locked_at" binding:"required"`
	SupportEmail string `json:"support_email"`
}

type AnnouncementEmailRequest struct {
	Emails   []string `json:"emails" binding:"required,min=1"`
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body" binding:"required"`
	PostedBy string   `json:"posted_by"`
}

// SendEmail godoc
// @Summary Send email
// @Description Send an email through the notification service
// @Tags email
// @Accept json
// @Produce json
// @Param email body services.EmailRequest true "Email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/send [post]
func (eh *EmailHandler) SendEmail(c *gin.Context) {
	var request services.EmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	response, err := eh.emailService.SendEmail(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendVerificationEmail godoc
// @Summary Send verification email
// @Description Send a welcome email with an email verification link
// @Tags email
// @Accept json
// @Produce json
// @Param request body VerificationEmailRequest true "Verification email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/verification [post]
func (eh *EmailHandler) SendVerificationEmail(c *gin.Context) {
	var request VerificationEmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	// Verification links resolve through the gateway so the click lands on
	// the auth service no matter where the frontend is hosted.
	verificationURL := fmt.Sprintf("%s/api/auth/verify-email/%s", eh.config.APIGatewayURL, request.VerificationCode)

	response, err := eh.emailService.SendWelcomeEmail(request.Email, request.Name, verificationURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send verification email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendPasswordResetEmail godoc
// @Summary Send password reset email
// @Description Send a password reset email with a reset link
// @Tags email
// @Accept json
// @Produce json
// @Param email body PasswordResetEmailRequest true "Password reset email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/password-reset [post]
func (eh *EmailHandler) SendPasswordResetEmail(c *gin.Context) {
	var request PasswordResetEmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", eh.config.FrontendURL, request.Token)

	response, err := eh.emailService.SendPasswordResetEmail(request.Email, request.Name, resetURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send password reset email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendLockoutAlertEmail godoc
// @Summary Send account lockout alert
// @Description Notify an account owner that their account was locked after repeated failed sign-in attempts
// @Tags email
// @Accept json
// @Produce json
// @Param email body LockoutAlertEmailRequest true "Lockout alert email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/lockout-alert [post]
func (eh *EmailHandler) SendLockoutAlertEmail(c *gin.Context) {
	var request LockoutAlertEmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	response, err := eh.emailService.SendLockoutAlertEmail(
		request.Email,
		request.Name,
		request.FailedCount,
		request.IPAddress,
		request.LockedAt,
		request.SupportEmail,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send lockout alert email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendAnnouncementEmail godoc
// @Summary Send announcement email
// @Description Fan a community announcement out to a list of recipients
// @Tags email
// @Accept json
// @Produce json
// @Param email body AnnouncementEmailRequest true "Announcement email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/announcement [post]
func (eh *EmailHandler) SendAnnouncementEmail(c *gin.Context) {
	var request AnnouncementEmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	response, err := eh.emailService.SendAnnouncementEmail(request.Emails, request.Title, request.Body, request.PostedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send announcement email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResendVerificationEmail godoc
// @Summary Resend verification email
// @Description Resend verification email to user after creating new token
// @Tags email
// @Accept json
// @Produce json
// @Param request body ResendVerificationRequest true "Resend verification request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/email/resend-verification [post]
func (eh *EmailHandler) ResendVerificationEmail(c *gin.Context) {
	var request ResendVerificationRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	// Call auth service to create new verification token
	tokenRequest := map[string]interface{}{
		"email": request.Email,
	}

	tokenRequestBytes, _ := json.Marshal(tokenRequest)
	resp, err := http.Post(
		fmt.Sprintf("%s/api/auth/create-verification-token", eh.config.AuthServiceURL),
		"application/json",
		bytes.NewBuffer(tokenRequestBytes),
	)

	if err != nil || resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create new verification token",
		})
		return
	}
	defer resp.Body.Close()

	var tokenResponse struct {
		Token     string `json:"token"`
		FirstName string `json:"first_name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to parse token response",
		})
		return
	}

	verificationURL := fmt.Sprintf("%s/api/auth/verify-email/%s", eh.config.APIGatewayURL, tokenResponse.Token)

	response, err := eh.emailService.SendWelcomeEmail(request.Email, tokenResponse.FirstName, verificationURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send verification email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification email resent successfully",
		"sent_at": response.SentAt,
	})
}

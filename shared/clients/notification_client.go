package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dwellport-backend/shared/config"
)

// NotificationClient handles communication with notification service
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Email request structs
type WelcomeEmailRequest struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	VerificationCode string `json:"verification_code"`
}

type PasswordResetEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// LockoutAlertEmailRequest notifies a user that their account was locked
// after repeated failed sign-in attempts.
type LockoutAlertEmailRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	FailedCount  int    `json:"failed_count"`
	IPAddress    string `json:"ip_address,omitempty"`
	LockedAt     string `json:"locked_at"`
	SupportEmail string `json:"support_email,omitempty"`
}

// AnnouncementEmailRequest fans an announcement out to its audience.
type AnnouncementEmailRequest struct {
	Emails   []string `json:"emails"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	PostedBy string   `json:"posted_by"`
}

// EmailResponse represents email service response
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// SendWelcomeEmail sends welcome verification email
func (nc *NotificationClient) SendWelcomeEmail(to, name, verificationCode string) error {
	request := WelcomeEmailRequest{
		Email:            to,
		Name:             name,
		VerificationCode: verificationCode,
	}
	return nc.sendEmailRequest("/api/notifications/email/verification", request)
}

// SendPasswordResetEmail sends password reset email
func (nc *NotificationClient) SendPasswordResetEmail(to, name, token string) error {
	request := PasswordResetEmailRequest{
		Email: to,
		Name:  name,
		Token: token,
	}
	return nc.sendEmailRequest("/api/notifications/email/password-reset", request)
}

// SendLockoutAlertEmail tells the account owner their account is locked.
func (nc *NotificationClient) SendLockoutAlertEmail(req LockoutAlertEmailRequest) error {
	return nc.sendEmailRequest("/api/notifications/email/lockout-alert", req)
}

// SendAnnouncementEmail fans an announcement out by email.
func (nc *NotificationClient) SendAnnouncementEmail(req AnnouncementEmailRequest) error {
	return nc.sendEmailRequest("/api/notifications/email/announcement", req)
}

// Generic email sender
func (nc *NotificationClient) sendEmailRequest(endpoint string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s%s", nc.baseURL, endpoint)
	resp, err := nc.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}

	return nil
}

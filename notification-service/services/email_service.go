package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	nconfig "dwellport-backend/notification-service/config"
)

// EmailRequest represents a single outbound email.
type EmailRequest struct {
	To           []string               `json:"to" binding:"required"`
	CC           []string               `json:"cc,omitempty"`
	BCC          []string               `json:"bcc,omitempty"`
	Subject      string                 `json:"subject" binding:"required"`
	Body         string                 `json:"body"`
	IsHTML       bool                   `json:"is_html"`
	TemplateID   string                 `json:"template_id,omitempty"`
	TemplateVars map[string]interface{} `json:"template_vars,omitempty"`
}

// EmailResponse reports the outcome of a send.
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// EmailService renders templates and delivers mail over SMTP, retrying
// transient failures per the configured retry policy.
type EmailService struct {
	config          *nconfig.NotificationConfig
	templateService *TemplateService
}

func NewEmailService(cfg *nconfig.NotificationConfig) *EmailService {
	return &EmailService{
		config:          cfg,
		templateService: NewTemplateService(cfg),
	}
}

// SendEmail validates, renders and delivers one email. When email
// notifications are disabled the send is skipped and reported as a
// success so callers do not treat a muted environment as a failure.
func (es *EmailService) SendEmail(request EmailRequest) (*EmailResponse, error) {
	startedAt := time.Now().Format(time.RFC3339)

	if len(request.To) == 0 {
		return nil, fmt.Errorf("recipient list cannot be empty")
	}
	if request.Subject == "" {
		return nil, fmt.Errorf("subject cannot be empty")
	}

	if request.TemplateID != "" && request.TemplateVars != nil {
		body, err := es.templateService.RenderTemplate(request.TemplateID, request.TemplateVars)
		if err != nil {
			log.Printf("Failed to render template: %v", err)
			return nil, fmt.Errorf("failed to render template: %v", err)
		}
		request.Body = body
		request.IsHTML = true
	}

	if request.Body == "" {
		return nil, fmt.Errorf("body cannot be empty")
	}

	if !es.config.EmailConfig.EnableEmailNotification {
		log.Printf("Email notifications disabled, skipping send to %v", request.To)
		return &EmailResponse{Success: true, Message: "Email notifications disabled", SentAt: startedAt}, nil
	}

	if err := es.deliverWithRetry(request); err != nil {
		log.Printf("Failed to send email to %v: %v", request.To, err)
		return &EmailResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to send email: %v", err),
			SentAt:  startedAt,
		}, err
	}

	log.Printf("Email sent successfully to %v", request.To)
	return &EmailResponse{Success: true, Message: "Email sent successfully", SentAt: startedAt}, nil
}

func (es *EmailService) deliverWithRetry(request EmailRequest) error {
	attempts := es.config.EmailConfig.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(es.config.EmailConfig.RetryDelay) * time.Second

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = es.deliver(request); err == nil {
			return nil
		}
		if attempt < attempts {
			log.Printf("⚠️ Email send attempt %d/%d failed, retrying in %s: %v", attempt, attempts, delay, err)
			time.Sleep(delay)
		}
	}
	return err
}

func (es *EmailService) deliver(request EmailRequest) error {
	host := es.config.SMTPHost
	port := es.config.SMTPPort
	username := es.config.SMTPUsername
	password := es.config.SMTPPassword

	if host == "" || username == "" || password == "" {
		return fmt.Errorf("SMTP configuration is incomplete")
	}

	auth := smtp.PlainAuth("", username, password, host)
	addr := host + ":" + port
	message := []byte(es.buildEmailMessage(request))

	recipients := append([]string{}, request.To...)
	recipients = append(recipients, request.CC...)
	recipients = append(recipients, request.BCC...)

	// Port 465 is implicit TLS; everything else goes through net/smtp,
	// which negotiates STARTTLS when the server offers it.
	if port == "465" || es.config.SMTPUseTLS {
		return es.deliverTLS(addr, host, auth, recipients, message)
	}
	return smtp.SendMail(addr, auth, es.config.EmailFrom, recipients, message)
}

func (es *EmailService) deliverTLS(addr, host string, auth smtp.Auth, recipients []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(es.config.EmailFrom); err != nil {
		return err
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (es *EmailService) buildEmailMessage(request EmailRequest) string {
	contentType := "text/plain"
	if request.IsHTML {
		contentType = "text/html"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", es.config.EmailFromName, es.config.EmailFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(request.To, ", "))
	if len(request.CC) > 0 {
		fmt.Fprintf(&msg, "CC: %s\r\n", strings.Join(request.CC, ", "))
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", request.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	msg.WriteString("\r\n")
	msg.WriteString(request.Body)
	return msg.String()
}

// SendWelcomeEmail sends the signup email with the verification link.
func (es *EmailService) SendWelcomeEmail(to, name, verificationURL string) (*EmailResponse, error) {
	return es.SendEmail(EmailRequest{
		To:         []string{to},
		Subject:    "Welcome to DwellPort - Please Verify Your Email",
		TemplateID: "welcome_verification",
		TemplateVars: map[string]interface{}{
			"Name":            name,
			"VerificationURL": verificationURL,
		},
	})
}

// SendPasswordResetEmail sends the reset link for a password reset request.
func (es *EmailService) SendPasswordResetEmail(to, name, resetURL string) (*EmailResponse, error) {
	return es.SendEmail(EmailRequest{
		To:         []string{to},
		Subject:    "Password Reset Request - DwellPort",
		TemplateID: "password_reset",
		TemplateVars: map[string]interface{}{
			"Name":     name,
			"ResetURL": resetURL,
		},
	})
}

// SendLockoutAlertEmail tells the account owner their account has been
// locked after repeated failed sign-in attempts.
func (es *EmailService) SendLockoutAlertEmail(to, name string, failedCount int, ipAddress, lockedAt, supportEmail string) (*EmailResponse, error) {
	if supportEmail == "" {
		supportEmail = es.config.EmailFrom
	}

	return es.SendEmail(EmailRequest{
		To:         []string{to},
		Subject:    "Your DwellPort Account Has Been Locked",
		TemplateID: "lockout_alert",
		TemplateVars: map[string]interface{}{
			"Name":         name,
			"FailedCount":  failedCount,
			"IPAddress":    ipAddress,
			"LockedAt":     lockedAt,
			"SupportEmail": supportEmail,
		},
	})
}

// SendAnnouncementEmail fans a community announcement out by email.
// Recipients go on BCC so tenants never see each other's addresses.
func (es *EmailService) SendAnnouncementEmail(emails []string, title, body, postedBy string) (*EmailResponse, error) {
	return es.SendEmail(EmailRequest{
		To:         []string{es.config.EmailFrom},
		BCC:        emails,
		Subject:    fmt.Sprintf("Community Announcement: %s", title),
		TemplateID: "announcement",
		TemplateVars: map[string]interface{}{
			"Title":    title,
			"Body":     body,
			"PostedBy": postedBy,
		},
	})
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// EmailVerificationToken backs the email-verification flow. A user keeps
// redirecting to /email-verification until one of these is consumed.
type EmailVerificationToken struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Token      string     `json:"token" gorm:"size:255;uniqueIndex;not null"`
	Email      string     `json:"email" gorm:"size:255;not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	Verified   bool       `json:"verified" gorm:"default:false"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

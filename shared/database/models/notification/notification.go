package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	TypeAnnouncement   = "ANNOUNCEMENT"
	TypeServiceRequest = "SERVICE_REQUEST"
	TypeApplication    = "APPLICATION"
	TypePayment        = "PAYMENT"
)

// Notification is one entry in a user's in-portal notification feed.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string     `json:"type" gorm:"type:varchar(50);not null"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Body      string     `json:"body" gorm:"type:text"`
	Link      string     `json:"link" gorm:"type:varchar(500)"`
	Read      bool       `json:"read" gorm:"default:false;index"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// WebSocketMessage is the push envelope broadcast to connected clients.
type WebSocketMessage struct {
	Type    string      `json:"type"`
	UserID  string      `json:"user_id,omitempty"` // empty means broadcast
	Payload interface{} `json:"payload"`
}

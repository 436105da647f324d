package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement audiences
const (
	AnnouncementAudienceAll     = "ALL"
	AnnouncementAudienceTenants = "TENANTS"
	AnnouncementAudienceAdmins  = "ADMINS"
)

// Announcement is a notice published by an admin to the portal. Publishing
// pushes it to connected tenants over WebSocket and writes notification rows.
type Announcement struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Body        string     `json:"body" gorm:"type:text;not null"`
	Audience    string     `json:"audience" gorm:"size:20;default:'ALL'"`
	Published   bool       `json:"published" gorm:"default:false;index"`
	PublishedBy *uuid.UUID `json:"published_by" gorm:"type:uuid"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

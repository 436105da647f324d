package models

import (
	"time"

	"github.com/google/uuid"
)

// Service request statuses
const (
	ServiceRequestStatusOpen       = "OPEN"
	ServiceRequestStatusInProgress = "IN_PROGRESS"
	ServiceRequestStatusResolved   = "RESOLVED"
	ServiceRequestStatusClosed     = "CLOSED"
)

// Service request priorities
const (
	ServiceRequestPriorityLow    = "LOW"
	ServiceRequestPriorityNormal = "NORMAL"
	ServiceRequestPriorityUrgent = "URGENT"
)

// ServiceRequest is a maintenance request filed by a tenant for their unit.
type ServiceRequest struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID `json:"unit_id" gorm:"type:uuid;not null;index"`
	Category    string    `json:"category" gorm:"size:100;not null"` // plumbing, electrical, hvac, other
	Description string    `json:"description" gorm:"type:text;not null"`
	Priority    string    `json:"priority" gorm:"size:20;default:'NORMAL'"`
	Status      string    `json:"status" gorm:"size:20;default:'OPEN';index"`
	// PhotoKey is the MinIO object key of the uploaded photo, if any
	PhotoKey       string     `json:"photo_key" gorm:"size:500"`
	ResolutionNote string     `json:"resolution_note" gorm:"type:text"`
	ResolvedBy     *uuid.UUID `json:"resolved_by" gorm:"type:uuid"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Unit Unit `json:"unit" gorm:"foreignKey:UnitID"`
}

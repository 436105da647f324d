package models

import (
	"time"

	"github.com/google/uuid"
)

// Application statuses
const (
	ApplicationStatusPending  = "PENDING"
	ApplicationStatusApproved = "APPROVED"
	ApplicationStatusRejected = "REJECTED"
)

// Application is a rental application submitted by a prospective tenant.
type Application struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplicantID   uuid.UUID  `json:"applicant_id" gorm:"type:uuid;not null;index"`
	UnitID        uuid.UUID  `json:"unit_id" gorm:"type:uuid;not null;index"`
	MoveInDate    *time.Time `json:"move_in_date"`
	MonthlyIncome int64      `json:"monthly_income" gorm:"default:0"`
	Message       string     `json:"message" gorm:"type:text"`
	Status        string     `json:"status" gorm:"size:20;default:'PENDING';index"`
	ReviewNotes   string     `json:"review_notes" gorm:"type:text"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	// AttachmentKey is the MinIO object key of the uploaded supporting document
	AttachmentKey string    `json:"attachment_key" gorm:"size:500"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Applicant User `json:"applicant" gorm:"foreignKey:ApplicantID"`
	Unit      Unit `json:"unit" gorm:"foreignKey:UnitID"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Payment is a rent payment record. The actual charge happens at an external
// payment gateway; this row only tracks the bookkeeping side.
type Payment struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID  `json:"unit_id" gorm:"type:uuid;not null;index"`
	AmountCents int64      `json:"amount_cents" gorm:"not null"`
	Method      string     `json:"method" gorm:"size:50"` // card, ach, check
	Status      string     `json:"status" gorm:"size:20;default:'PENDING';index"`
	// Reference is the external gateway's transaction identifier
	Reference string     `json:"reference" gorm:"size:255"`
	PeriodKey string     `json:"period_key" gorm:"size:7"` // YYYY-MM billing period
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Unit Unit `json:"unit" gorm:"foreignKey:UnitID"`
}

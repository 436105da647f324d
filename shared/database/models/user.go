package models

import (
	"time"

	"github.com/google/uuid"
)

// User statuses
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

type User struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	Password      string     `json:"-" gorm:"not null"`
	FirstName     string     `json:"first_name" gorm:"size:100"`
	LastName      string     `json:"last_name" gorm:"size:100"`
	Phone         string     `json:"phone" gorm:"size:20"`
	Avatar        string     `json:"avatar"`
	Status        string     `json:"status" gorm:"default:'ACTIVE'"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	// Role is stored as a raw string and always parsed through the closed
	// roles.Role type at the boundary; it is never switched on directly.
	Role   string     `json:"role" gorm:"size:50;default:'tenant'"`
	UnitID *uuid.UUID `json:"unit_id" gorm:"type:uuid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

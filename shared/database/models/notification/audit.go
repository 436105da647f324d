package notification

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records administrative actions against security records (unlock,
// delete, clear-all) and other admin mutations worth a paper trail.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	Action     string     `json:"action" gorm:"type:varchar(100);not null;index"`
	TargetType string     `json:"target_type" gorm:"type:varchar(100)"`
	TargetID   string     `json:"target_id" gorm:"type:varchar(255);index"`
	Detail     string     `json:"detail,omitempty" gorm:"type:text"`
	IPAddress  string     `json:"ip_address" gorm:"type:varchar(45)"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// SecurityRecord tracks failed-login bookkeeping and lock state for one user
// identity. At most one record exists per user_id; it is created lazily on
// the first recorded failure and never on successful login alone.
//
// UserID is a string column, not a uuid: historical rows written by an
// earlier auth integration hold an email or "email:<email>" where the
// canonical identifier belongs. The reconcile-security command and the
// admin-unlock fallback normalize those to canonical uuids; new writes are
// canonical only.
type SecurityRecord struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID string    `json:"user_id" gorm:"size:255;uniqueIndex;not null"`

	// FailedLoginCount is clamped to [0, FailedCountCeiling] on every write
	FailedLoginCount int  `json:"failed_login_count" gorm:"default:0"`
	AccountLocked    bool `json:"account_locked" gorm:"default:false;index"`

	// Lock fields are set while locked and cleared on unlock, never left stale
	LockedAt     *time.Time `json:"locked_at"`
	LockedBy     string     `json:"locked_by" gorm:"size:255"`
	LockedReason string     `json:"locked_reason" gorm:"size:500"`

	// Last-unlock audit trail, overwritten on each unlock
	UnlockedAt   *time.Time `json:"unlocked_at"`
	UnlockedBy   string     `json:"unlocked_by" gorm:"size:255"`
	UnlockReason string     `json:"unlock_reason" gorm:"size:500"`

	LastLoginAttempt    *time.Time `json:"last_login_attempt"`
	LastSuccessfulLogin *time.Time `json:"last_successful_login"`
	IPAddress           string     `json:"ip_address" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for SecurityRecord
func (SecurityRecord) TableName() string {
	return "security_records"
}

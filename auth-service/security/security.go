// Package security implements the account lockout guard: per-identity
// failed-login bookkeeping, threshold locking and the administrative
// unlock/reset surface over security_records.
package security

import (
	"context"

	"github.com/google/uuid"

	"dwellport-backend/shared/database/models/auth"
)

// Lockout policy defaults. The threshold and ceiling are deliberate policy
// constants, overridable through config but never computed.
const (
	DefaultMaxFailedAttempts  = 5
	DefaultFailedCountCeiling = 10
)

// SystemActor is recorded as locked_by when the guard locks an account on
// its own, as opposed to an admin identity.
const SystemActor = "system"

// Policy carries the lockout thresholds a Guard enforces.
type Policy struct {
	// MaxFailedAttempts is the failed-login count at which the account locks
	MaxFailedAttempts int
	// FailedCountCeiling clamps failed_login_count; it never exceeds this
	FailedCountCeiling int
}

// DefaultPolicy returns the stock lockout policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxFailedAttempts:  DefaultMaxFailedAttempts,
		FailedCountCeiling: DefaultFailedCountCeiling,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxFailedAttempts <= 0 {
		p.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if p.FailedCountCeiling < p.MaxFailedAttempts {
		p.FailedCountCeiling = DefaultFailedCountCeiling
	}
	return p
}

// State is the caller-visible outcome of an attempt-recording operation.
type State struct {
	FailedLoginCount int  `json:"failed_login_count"`
	AccountLocked    bool `json:"account_locked"`
}

// UserDirectory resolves a human-facing email to the canonical user
// identity. The user store is externally owned; the guard only reads it.
type UserDirectory interface {
	FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
}

// Store is the persistence boundary for security records. Implementations
// must make each mutating method a single atomic statement against the
// backing store; the guard never does read-then-separate-write for counting
// or lock transitions.
type Store interface {
	// RecordFailure inserts a record with count 1, or increments an existing
	// one clamped to ceiling, stamping last_login_attempt. It returns the
	// committed post-increment record.
	RecordFailure(ctx context.Context, userID, ipAddress string, ceiling int) (*auth.SecurityRecord, error)

	// ApplyLock sets the lock fields if and only if the record is unlocked
	// and its committed count has reached threshold. Reports whether the
	// lock was applied by this call.
	ApplyLock(ctx context.Context, userID string, threshold int, lockedBy, reason string) (bool, error)

	// ResetOnSuccess clears count and lock state in one conditional update.
	// A missing or already-clean record is a no-op, not an error.
	ResetOnSuccess(ctx context.Context, userID string) error

	// Get returns the record for a canonical user id, or ErrNotFound.
	Get(ctx context.Context, userID string) (*auth.SecurityRecord, error)

	// FindByLegacyEmail matches records whose user_id holds a historical
	// identity string: the bare email or "email:<email>". No other legacy
	// pattern is matched.
	FindByLegacyEmail(ctx context.Context, email string) (*auth.SecurityRecord, error)

	// Unlock performs the compare-and-swap unlock: it succeeds only while
	// account_locked is true, clearing lock state, zeroing the count,
	// stamping the unlock audit fields and rewriting user_id to the
	// canonical identity. Reports whether this call won the swap.
	Unlock(ctx context.Context, recordID uuid.UUID, canonicalUserID, unlockedBy, reason string) (*auth.SecurityRecord, bool, error)

	// DeleteByID removes one record and returns the pre-deletion snapshot.
	DeleteByID(ctx context.Context, recordID uuid.UUID) (*auth.SecurityRecord, error)

	// DeleteAll removes every record and returns the deleted count.
	DeleteAll(ctx context.Context) (int64, error)

	// ListNonCanonical returns records whose user_id is not a uuid.
	ListNonCanonical(ctx context.Context) ([]auth.SecurityRecord, error)

	// RewriteUserID replaces a record's stored identity with the canonical one.
	RewriteUserID(ctx context.Context, recordID uuid.UUID, canonicalUserID string) error
}

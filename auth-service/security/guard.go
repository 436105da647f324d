package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"dwellport-backend/shared/apperrors"
	"dwellport-backend/shared/database/models/auth"
)

// Guard enforces the account lockout policy. It is stateless in process
// memory; all state lives in the Store, and concurrency correctness rests on
// the Store's per-record atomic updates.
type Guard struct {
	store  Store
	users  UserDirectory
	policy Policy
}

// NewGuard constructs a Guard with explicit dependencies.
func NewGuard(store Store, users UserDirectory, policy Policy) *Guard {
	return &Guard{
		store:  store,
		users:  users,
		policy: policy.normalized(),
	}
}

// Policy returns the active lockout policy.
func (g *Guard) Policy() Policy {
	return g.policy
}

// RecordFailedAttempt counts one failed login for userID. The record is
// created lazily on the first failure. Crossing the threshold locks the
// account silently; the lock is communicated only through the returned state.
func (g *Guard) RecordFailedAttempt(ctx context.Context, userID, ipAddress string) (State, error) {
	if strings.TrimSpace(userID) == "" {
		return State{}, apperrors.Validation("userId is required")
	}
	if ipAddress != "" && net.ParseIP(ipAddress) == nil {
		return State{}, apperrors.Validation("ipAddress %q is not an IPv4 or IPv6 literal", ipAddress)
	}

	rec, err := g.store.RecordFailure(ctx, userID, ipAddress, g.policy.FailedCountCeiling)
	if err != nil {
		return State{}, err
	}

	locked := rec.AccountLocked
	if !locked && rec.FailedLoginCount >= g.policy.MaxFailedAttempts {
		// The lock decision runs against the committed post-increment count;
		// the conditional update makes concurrent callers agree on it.
		reason := fmt.Sprintf("locked after %d failed login attempts", g.policy.MaxFailedAttempts)
		applied, lockErr := g.store.ApplyLock(ctx, userID, g.policy.MaxFailedAttempts, SystemActor, reason)
		if lockErr != nil {
			return State{}, lockErr
		}
		locked = locked || applied
		if !applied {
			// Another attempt raced us to the lock; reflect the stored state.
			current, getErr := g.store.Get(ctx, userID)
			if getErr == nil {
				locked = current.AccountLocked
			}
		}
	}

	return State{FailedLoginCount: rec.FailedLoginCount, AccountLocked: locked}, nil
}

// RecordSuccessfulLogin resets bookkeeping after a verified login. It never
// locks or increments; a missing record is a no-op that still reports the
// clean state.
func (g *Guard) RecordSuccessfulLogin(ctx context.Context, userID string) (State, error) {
	if strings.TrimSpace(userID) == "" {
		return State{}, apperrors.Validation("userId is required")
	}
	if err := g.store.ResetOnSuccess(ctx, userID); err != nil {
		return State{}, err
	}
	return State{FailedLoginCount: 0, AccountLocked: false}, nil
}

// IsLocked reports whether the account is currently locked. Absence of a
// record means not locked.
func (g *Guard) IsLocked(ctx context.Context, userID string) (bool, error) {
	rec, err := g.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.AccountLocked, nil
}

// UnlockRequest identifies the account to unlock either by canonical user id
// or by email, plus the acting admin and an optional reason.
type UnlockRequest struct {
	UserID     string
	Email      string
	UnlockedBy string
	Reason     string
}

// AdminUnlock releases a locked account. Resolution runs by user id first;
// when the caller supplied an email and no record exists under the canonical
// id, the known legacy identity patterns are tried. On success the stored
// user_id is rewritten to the canonical identity.
func (g *Guard) AdminUnlock(ctx context.Context, req UnlockRequest) (*auth.SecurityRecord, error) {
	if strings.TrimSpace(req.UnlockedBy) == "" {
		return nil, apperrors.Validation("unlockedBy is required")
	}

	canonicalID := strings.TrimSpace(req.UserID)
	email := strings.TrimSpace(req.Email)

	if canonicalID == "" {
		if email == "" {
			return nil, apperrors.Validation("userId or email is required")
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperrors.Validation("invalid email format")
		}
		id, err := g.users.FindIDByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		canonicalID = id.String()
	}

	rec, err := g.store.Get(ctx, canonicalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) || email == "" {
			return nil, err
		}
		// Historical rows may carry the email where the canonical id belongs.
		rec, err = g.store.FindByLegacyEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}

	if !rec.AccountLocked {
		return nil, apperrors.InvalidState("account is not locked")
	}

	updated, swapped, err := g.store.Unlock(ctx, rec.ID, canonicalID, req.UnlockedBy, req.Reason)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// A concurrent unlock won the compare-and-swap.
		return nil, apperrors.InvalidState("account is not locked")
	}
	return updated, nil
}

// AdminDeleteRecord permanently removes one record, returning the
// pre-deletion snapshot for audit purposes.
func (g *Guard) AdminDeleteRecord(ctx context.Context, recordID uuid.UUID) (*auth.SecurityRecord, error) {
	return g.store.DeleteByID(ctx, recordID)
}

// AdminClearAll permanently removes every security record.
func (g *Guard) AdminClearAll(ctx context.Context) (int64, error) {
	return g.store.DeleteAll(ctx)
}

// ReconcileReport summarizes a legacy-identity normalization pass.
type ReconcileReport struct {
	Scanned   int      `json:"scanned"`
	Rewritten int      `json:"rewritten"`
	// Flagged lists record ids carrying an identity pattern outside the two
	// known legacy forms; these need manual review, never guessing.
	Flagged []string `json:"flagged,omitempty"`
	// Orphaned lists record ids whose legacy email matches no current user.
	Orphaned []string `json:"orphaned,omitempty"`
}

// ReconcileLegacyIdentities is the one-time migration pass: every record
// whose user_id holds a bare email or an "email:<email>" value is rewritten
// to the canonical uuid of the matching user. Any other non-uuid pattern is
// flagged for manual review.
func (g *Guard) ReconcileLegacyIdentities(ctx context.Context) (ReconcileReport, error) {
	records, err := g.store.ListNonCanonical(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Scanned: len(records)}
	for _, rec := range records {
		email, ok := legacyEmail(rec.UserID)
		if !ok {
			report.Flagged = append(report.Flagged, rec.ID.String())
			continue
		}
		id, err := g.users.FindIDByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				report.Orphaned = append(report.Orphaned, rec.ID.String())
				continue
			}
			return report, err
		}
		if err := g.store.RewriteUserID(ctx, rec.ID, id.String()); err != nil {
			return report, err
		}
		report.Rewritten++
	}
	return report, nil
}

// legacyEmail extracts the email from the two observed legacy identity
// forms. It deliberately matches nothing else.
func legacyEmail(storedID string) (string, bool) {
	candidate := storedID
	if strings.HasPrefix(storedID, "email:") {
		candidate = strings.TrimPrefix(storedID, "email:")
	}
	if _, err := mail.ParseAddress(candidate); err != nil {
		return "", false
	}
	return candidate, true
}

package security

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"dwellport-backend/shared/apperrors"
	"dwellport-backend/shared/database/models/auth"
)

// memStore is an in-memory Store whose mutating methods hold a mutex for the
// whole read-modify-write, mirroring the per-row atomicity the Postgres
// store gets from single-statement updates.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*auth.SecurityRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*auth.SecurityRecord)}
}

func (m *memStore) byUserID(userID string) *auth.SecurityRecord {
	for _, rec := range m.records {
		if rec.UserID == userID {
			return rec
		}
	}
	return nil
}

func (m *memStore) RecordFailure(_ context.Context, userID, ipAddress string, ceiling int) (*auth.SecurityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	rec := m.byUserID(userID)
	if rec == nil {
		rec = &auth.SecurityRecord{
			ID:               uuid.New(),
			UserID:           userID,
			FailedLoginCount: 1,
			LastLoginAttempt: &now,
			IPAddress:        ipAddress,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		m.records[rec.ID] = rec
	} else {
		if rec.FailedLoginCount < ceiling {
			rec.FailedLoginCount++
		}
		rec.LastLoginAttempt = &now
		rec.IPAddress = ipAddress
		rec.UpdatedAt = now
	}

	snapshot := *rec
	return &snapshot, nil
}

func (m *memStore) ApplyLock(_ context.Context, userID string, threshold int, lockedBy, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.byUserID(userID)
	if rec == nil || rec.AccountLocked || rec.FailedLoginCount < threshold {
		return false, nil
	}
	now := time.Now().UTC()
	rec.AccountLocked = true
	rec.LockedAt = &now
	rec.LockedBy = lockedBy
	rec.LockedReason = reason
	rec.UpdatedAt = now
	return true, nil
}

func (m *memStore) ResetOnSuccess(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.byUserID(userID)
	if rec == nil || (rec.FailedLoginCount == 0 && !rec.AccountLocked) {
		return nil
	}
	now := time.Now().UTC()
	rec.FailedLoginCount = 0
	rec.AccountLocked = false
	rec.LockedAt = nil
	rec.LockedBy = ""
	rec.LockedReason = ""
	rec.LastSuccessfulLogin = &now
	rec.UpdatedAt = now
	return nil
}

func (m *memStore) Get(_ context.Context, userID string) (*auth.SecurityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.byUserID(userID)
	if rec == nil {
		return nil, apperrors.NotFound("no security record for user %s", userID)
	}
	snapshot := *rec
	return &snapshot, nil
}

func (m *memStore) FindByLegacyEmail(_ context.Context, email string) (*auth.SecurityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, candidate := range []string{email, "email:" + email} {
		if rec := m.byUserID(candidate); rec != nil {
			snapshot := *rec
			return &snapshot, nil
		}
	}
	return nil, apperrors.NotFound("no security record for email %s", email)
}

func (m *memStore) Unlock(_ context.Context, recordID uuid.UUID, canonicalUserID, unlockedBy, reason string) (*auth.SecurityRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordID]
	if !ok || !rec.AccountLocked {
		return nil, false, nil
	}
	now := time.Now().UTC()
	rec.UserID = canonicalUserID
	rec.FailedLoginCount = 0
	rec.AccountLocked = false
	rec.LockedAt = nil
	rec.LockedBy = ""
	rec.LockedReason = ""
	rec.UnlockedAt = &now
	rec.UnlockedBy = unlockedBy
	rec.UnlockReason = reason
	rec.UpdatedAt = now

	snapshot := *rec
	return &snapshot, true, nil
}

func (m *memStore) DeleteByID(_ context.Context, recordID uuid.UUID) (*auth.SecurityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordID]
	if !ok {
		return nil, apperrors.NotFound("no security record %s", recordID)
	}
	snapshot := *rec
	delete(m.records, recordID)
	return &snapshot, nil
}

func (m *memStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := int64(len(m.records))
	m.records = make(map[uuid.UUID]*auth.SecurityRecord)
	return count, nil
}

func (m *memStore) ListNonCanonical(_ context.Context) ([]auth.SecurityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var legacy []auth.SecurityRecord
	for _, rec := range m.records {
		if _, err := uuid.Parse(rec.UserID); err != nil {
			legacy = append(legacy, *rec)
		}
	}
	return legacy, nil
}

func (m *memStore) RewriteUserID(_ context.Context, recordID uuid.UUID, canonicalUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordID]
	if !ok {
		return apperrors.NotFound("no security record %s", recordID)
	}
	rec.UserID = canonicalUserID
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// fakeDirectory maps emails to canonical ids.
type fakeDirectory struct {
	byEmail map[string]uuid.UUID
}

func (d *fakeDirectory) FindIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	if id, ok := d.byEmail[email]; ok {
		return id, nil
	}
	return uuid.Nil, apperrors.NotFound("no user with email %s", email)
}

func newTestGuard() (*Guard, *memStore, *fakeDirectory) {
	store := newMemStore()
	dir := &fakeDirectory{byEmail: make(map[string]uuid.UUID)}
	return NewGuard(store, dir, DefaultPolicy()), store, dir
}

func TestFailedAttemptSequence(t *testing.T) {
	guard, _, _ := newTestGuard()
	ctx := context.Background()
	userID := uuid.New().String()

	for n := 1; n <= 12; n++ {
		state, err := guard.RecordFailedAttempt(ctx, userID, "203.0.113.7")
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", n, err)
		}

		wantCount := n
		if wantCount > DefaultFailedCountCeiling {
			wantCount = DefaultFailedCountCeiling
		}
		if state.FailedLoginCount != wantCount {
			t.Errorf("attempt %d: count = %d, want %d", n, state.FailedLoginCount, wantCount)
		}

		wantLocked := n >= DefaultMaxFailedAttempts
		if state.AccountLocked != wantLocked {
			t.Errorf("attempt %d: locked = %v, want %v", n, state.AccountLocked, wantLocked)
		}
	}
}

func TestRecordCreatedLazilyOnFirstFailure(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()
	userID := uuid.New().String()

	if _, err := guard.RecordSuccessfulLogin(ctx, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, userID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Error("successful login alone must not create a record")
	}

	if _, err := guard.RecordFailedAttempt(ctx, userID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("record should exist after first failure: %v", err)
	}
	if rec.FailedLoginCount != 1 {
		t.Errorf("count = %d, want 1", rec.FailedLoginCount)
	}
}

func TestSuccessfulLoginResetsLockedAccount(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()
	userID := uuid.New().String()

	for i := 0; i < 7; i++ {
		if _, err := guard.RecordFailedAttempt(ctx, userID, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	rec, _ := store.Get(ctx, userID)
	if rec.FailedLoginCount != 7 || !rec.AccountLocked {
		t.Fatalf("setup: count=%d locked=%v, want 7/true", rec.FailedLoginCount, rec.AccountLocked)
	}

	state, err := guard.RecordSuccessfulLogin(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.FailedLoginCount != 0 || state.AccountLocked {
		t.Errorf("state = %+v, want {0 false}", state)
	}

	rec, _ = store.Get(ctx, userID)
	if rec.FailedLoginCount != 0 || rec.AccountLocked {
		t.Errorf("record = count %d locked %v, want 0/false", rec.FailedLoginCount, rec.AccountLocked)
	}
	if rec.LockedAt != nil || rec.LockedBy != "" || rec.LockedReason != "" {
		t.Error("lock fields must be cleared, not left stale")
	}
	if rec.LastSuccessfulLogin == nil {
		t.Error("last_successful_login should be stamped")
	}
}

func TestAdminUnlockRejectsUnlockedAccount(t *testing.T) {
	guard, store, dir := newTestGuard()
	ctx := context.Background()

	userID := uuid.New()
	dir.byEmail["resident@example.com"] = userID
	if _, err := guard.RecordFailedAttempt(ctx, userID.String(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, _ := store.Get(ctx, userID.String())

	_, err := guard.AdminUnlock(ctx, UnlockRequest{
		Email:      "resident@example.com",
		UnlockedBy: "admin@example.com",
	})
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	after, _ := store.Get(ctx, userID.String())
	if *before != *after {
		t.Error("rejected unlock must not change state")
	}
}

func TestAdminUnlockRewritesLegacyUserID(t *testing.T) {
	for _, legacy := range []string{"resident@example.com", "email:resident@example.com"} {
		t.Run(legacy, func(t *testing.T) {
			guard, store, dir := newTestGuard()
			ctx := context.Background()

			canonical := uuid.New()
			dir.byEmail["resident@example.com"] = canonical

			// Historical record stored under the legacy identity, locked.
			for i := 0; i < DefaultMaxFailedAttempts; i++ {
				if _, err := guard.RecordFailedAttempt(ctx, legacy, ""); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			rec, err := guard.AdminUnlock(ctx, UnlockRequest{
				Email:      "resident@example.com",
				UnlockedBy: "admin@example.com",
				Reason:     "verified with resident by phone",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.UserID != canonical.String() {
				t.Errorf("user_id = %q, want canonical %q", rec.UserID, canonical)
			}
			if rec.AccountLocked || rec.FailedLoginCount != 0 {
				t.Errorf("record = count %d locked %v, want 0/false", rec.FailedLoginCount, rec.AccountLocked)
			}
			if rec.UnlockedBy != "admin@example.com" || rec.UnlockedAt == nil {
				t.Error("unlock audit fields should be stamped")
			}

			// Lookup by canonical id now reflects the unlocked state.
			locked, err := guard.IsLocked(ctx, canonical.String())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if locked {
				t.Error("IsLocked by canonical id should be false after unlock")
			}
			if _, err := store.FindByLegacyEmail(ctx, "resident@example.com"); !errors.Is(err, apperrors.ErrNotFound) {
				t.Error("legacy identity should no longer match any record")
			}
		})
	}
}

func TestAdminUnlockUnknownEmail(t *testing.T) {
	guard, _, _ := newTestGuard()
	_, err := guard.AdminUnlock(context.Background(), UnlockRequest{
		Email:      "ghost@example.com",
		UnlockedBy: "admin@example.com",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentFailedAttempts(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()
	userID := uuid.New().String()

	const attempts = 5
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := guard.RecordFailedAttempt(ctx, userID, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rec, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.FailedLoginCount != attempts {
		t.Errorf("count = %d, want %d (no lost updates)", rec.FailedLoginCount, attempts)
	}
	if !rec.AccountLocked {
		t.Error("account should be locked after threshold concurrent failures")
	}
}

func TestAdminClearAll(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()

	const k = 4
	for i := 0; i < k; i++ {
		if _, err := guard.RecordFailedAttempt(ctx, uuid.New().String(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	deleted, err := guard.AdminClearAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != k {
		t.Errorf("deleted = %d, want %d", deleted, k)
	}

	remaining, _ := store.DeleteAll(ctx)
	if remaining != 0 {
		t.Errorf("store should be empty, still had %d records", remaining)
	}
}

func TestAdminDeleteRecordReturnsSnapshot(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()
	userID := uuid.New().String()

	if _, err := guard.RecordFailedAttempt(ctx, userID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := store.Get(ctx, userID)

	snapshot, err := guard.AdminDeleteRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.UserID != userID || snapshot.FailedLoginCount != 1 {
		t.Errorf("snapshot = %+v, want the pre-deletion record", snapshot)
	}
	if _, err := store.Get(ctx, userID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Error("record should be gone after delete")
	}

	if _, err := guard.AdminDeleteRecord(ctx, rec.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestValidationRunsBeforeStoreAccess(t *testing.T) {
	guard, store, _ := newTestGuard()
	ctx := context.Background()

	if _, err := guard.RecordFailedAttempt(ctx, uuid.New().String(), "not-an-ip"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("bad ip: err = %v, want ErrValidation", err)
	}
	if _, err := guard.RecordFailedAttempt(ctx, "", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty user id: err = %v, want ErrValidation", err)
	}
	if _, err := guard.AdminUnlock(ctx, UnlockRequest{Email: "not-an-email", UnlockedBy: "admin"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("bad email: err = %v, want ErrValidation", err)
	}
	if _, err := guard.AdminUnlock(ctx, UnlockRequest{Email: "a@b.com"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing actor: err = %v, want ErrValidation", err)
	}

	if n, _ := store.DeleteAll(ctx); n != 0 {
		t.Errorf("validation failures must not touch the store, found %d records", n)
	}
}

func TestIsLockedAbsentRecord(t *testing.T) {
	guard, _, _ := newTestGuard()
	locked, err := guard.IsLocked(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locked {
		t.Error("absence of a record means not locked")
	}
}

func TestReconcileLegacyIdentities(t *testing.T) {
	guard, store, dir := newTestGuard()
	ctx := context.Background()

	knownID := uuid.New()
	dir.byEmail["known@example.com"] = knownID

	seed := []string{
		"known@example.com",         // bare email, resolvable
		"email:known2@example.com",  // prefixed email, resolvable
		"gone@example.com",          // email with no matching user
		"legacy|pipe|pattern",       // unknown pattern, must be flagged
		uuid.New().String(),         // canonical, must be untouched
	}
	dir.byEmail["known2@example.com"] = uuid.New()
	for _, id := range seed {
		if _, err := store.RecordFailure(ctx, id, "", DefaultFailedCountCeiling); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	report, err := guard.ReconcileLegacyIdentities(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 4 {
		t.Errorf("scanned = %d, want 4 non-canonical records", report.Scanned)
	}
	if report.Rewritten != 2 {
		t.Errorf("rewritten = %d, want 2", report.Rewritten)
	}
	if len(report.Flagged) != 1 {
		t.Errorf("flagged = %v, want exactly the unknown pattern", report.Flagged)
	}
	if len(report.Orphaned) != 1 {
		t.Errorf("orphaned = %v, want exactly the unmatched email", report.Orphaned)
	}

	if rec, err := store.Get(ctx, knownID.String()); err != nil || rec.UserID != knownID.String() {
		t.Errorf("bare-email record should now be canonical: rec=%v err=%v", rec, err)
	}
	if legacy, _ := store.ListNonCanonical(ctx); len(legacy) != 2 {
		// The flagged pattern and the orphaned email stay as they are.
		ids := make([]string, 0, len(legacy))
		for _, rec := range legacy {
			ids = append(ids, rec.UserID)
		}
		t.Errorf("non-canonical leftovers = %v, want 2", strings.Join(ids, ", "))
	}
}

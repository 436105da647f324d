package security

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dwellport-backend/shared/apperrors"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/database/models/auth"
)

// GormStore persists security records through GORM/Postgres. Every mutating
// method is a single SQL statement, so concurrent attempts for the same
// user_id serialize on the row without application-level locking.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an injected database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) RecordFailure(ctx context.Context, userID, ipAddress string, ceiling int) (*auth.SecurityRecord, error) {
	now := time.Now().UTC()
	rec := auth.SecurityRecord{
		UserID:           userID,
		FailedLoginCount: 1,
		LastLoginAttempt: &now,
		IPAddress:        ipAddress,
	}

	// Upsert keyed on user_id with RETURNING, so the post-increment count we
	// hand back is the durably committed one.
	err := s.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"failed_login_count": gorm.Expr("LEAST(security_records.failed_login_count + 1, ?)", ceiling),
				"last_login_attempt": now,
				"ip_address":         ipAddress,
				"updated_at":         now,
			}),
		},
		clause.Returning{},
	).Create(&rec).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &rec, nil
}

func (s *GormStore) ApplyLock(ctx context.Context, userID string, threshold int, lockedBy, reason string) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&auth.SecurityRecord{}).
		Where("user_id = ? AND account_locked = ? AND failed_login_count >= ?", userID, false, threshold).
		Updates(map[string]interface{}{
			"account_locked": true,
			"locked_at":      now,
			"locked_by":      lockedBy,
			"locked_reason":  reason,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, apperrors.Storage(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ResetOnSuccess(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&auth.SecurityRecord{}).
		Where("user_id = ? AND (failed_login_count > 0 OR account_locked = ?)", userID, true).
		Updates(map[string]interface{}{
			"failed_login_count":    0,
			"account_locked":        false,
			"locked_at":             nil,
			"locked_by":             "",
			"locked_reason":         "",
			"last_successful_login": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return apperrors.Storage(res.Error)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, userID string) (*auth.SecurityRecord, error) {
	var rec auth.SecurityRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no security record for user %s", userID)
		}
		return nil, apperrors.Storage(err)
	}
	return &rec, nil
}

func (s *GormStore) FindByLegacyEmail(ctx context.Context, email string) (*auth.SecurityRecord, error) {
	var rec auth.SecurityRecord
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", []string{email, "email:" + email}).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no security record for email %s", email)
		}
		return nil, apperrors.Storage(err)
	}
	return &rec, nil
}

func (s *GormStore) Unlock(ctx context.Context, recordID uuid.UUID, canonicalUserID, unlockedBy, reason string) (*auth.SecurityRecord, bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&auth.SecurityRecord{}).
		Where("id = ? AND account_locked = ?", recordID, true).
		Updates(map[string]interface{}{
			"user_id":            canonicalUserID,
			"failed_login_count": 0,
			"account_locked":     false,
			"locked_at":          nil,
			"locked_by":          "",
			"locked_reason":      "",
			"unlocked_at":        now,
			"unlocked_by":        unlockedBy,
			"unlock_reason":      reason,
			"updated_at":         now,
		})
	if res.Error != nil {
		return nil, false, apperrors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	var rec auth.SecurityRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", recordID).Error; err != nil {
		return nil, true, apperrors.Storage(err)
	}
	return &rec, true, nil
}

func (s *GormStore) DeleteByID(ctx context.Context, recordID uuid.UUID) (*auth.SecurityRecord, error) {
	var rec auth.SecurityRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", recordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no security record %s", recordID)
		}
		return nil, apperrors.Storage(err)
	}

	res := s.db.WithContext(ctx).Delete(&auth.SecurityRecord{}, "id = ?", recordID)
	if res.Error != nil {
		return nil, apperrors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("no security record %s", recordID)
	}
	return &rec, nil
}

func (s *GormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&auth.SecurityRecord{})
	if res.Error != nil {
		return 0, apperrors.Storage(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) ListNonCanonical(ctx context.Context) ([]auth.SecurityRecord, error) {
	var all []auth.SecurityRecord
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var legacy []auth.SecurityRecord
	for _, rec := range all {
		if _, err := uuid.Parse(rec.UserID); err != nil {
			legacy = append(legacy, rec)
		}
	}
	return legacy, nil
}

func (s *GormStore) RewriteUserID(ctx context.Context, recordID uuid.UUID, canonicalUserID string) error {
	res := s.db.WithContext(ctx).Model(&auth.SecurityRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"user_id":    canonicalUserID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return apperrors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("no security record %s", recordID)
	}
	return nil
}

// GormUserDirectory resolves emails against the users table.
type GormUserDirectory struct {
	db *gorm.DB
}

// NewGormUserDirectory wraps an injected database handle.
func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var user models.User
	err := d.db.WithContext(ctx).Select("id").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperrors.NotFound("no user with email %s", email)
		}
		return uuid.Nil, apperrors.Storage(err)
	}
	return user.ID, nil
}

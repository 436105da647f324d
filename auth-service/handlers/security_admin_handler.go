package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/auth-service/security"
	"dwellport-backend/shared/apperrors"
	"dwellport-backend/shared/database/models/auth"
	"dwellport-backend/shared/database/models/notification"
	"dwellport-backend/shared/utils/query"
)

// SecurityAdminHandler exposes the administrative surface of the account
// lockout guard. Every route behind it requires the admin role.
type SecurityAdminHandler struct {
	db    *gorm.DB
	guard *security.Guard
}

func NewSecurityAdminHandler(db *gorm.DB, guard *security.Guard) *SecurityAdminHandler {
	return &SecurityAdminHandler{db: db, guard: guard}
}

// UnlockRequest identifies the account to unlock by user id or email.
type UnlockRequest struct {
	UserID string `json:"user_id" example:"7b1c8a02-4f4a-4f7e-9a30-2a2f6f2f9e11"`
	Email  string `json:"email" example:"tenant@example.com"`
	Reason string `json:"reason" example:"verified identity over the phone"`
}

// ResetRequest identifies the account whose failure count should be cleared.
type ResetRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Unlock releases a locked account
// @Summary Unlock a locked account
// @Description Release an account locked by repeated failed logins, identified by user id or email
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param unlock body UnlockRequest true "Account to unlock"
// @Success 200 {object} map[string]interface{} "Account unlocked"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "No matching security record"
// @Failure 409 {object} map[string]string "Account is not locked"
// @Router /auth/security/unlock [post]
func (h *SecurityAdminHandler) Unlock(c *gin.Context) {
	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetString("userID")
	rec, err := h.guard.AdminUnlock(c.Request.Context(), security.UnlockRequest{
		UserID:     req.UserID,
		Email:      req.Email,
		UnlockedBy: adminID,
		Reason:     req.Reason,
	})
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "security.unlock", rec.ID.String(), fmt.Sprintf("unlocked account %s", rec.UserID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Account unlocked successfully",
		"record":  rec,
	})
}

// DeleteRecord removes one security record
// @Summary Delete a security record
// @Description Permanently remove one security record by its id
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Security record ID"
// @Success 200 {object} map[string]interface{} "Record deleted"
// @Failure 400 {object} map[string]string "Invalid record ID"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /auth/security/records/{id} [delete]
func (h *SecurityAdminHandler) DeleteRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID format"})
		return
	}

	rec, err := h.guard.AdminDeleteRecord(c.Request.Context(), recordID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "security.delete_record", recordID.String(), fmt.Sprintf("deleted security record for %s", rec.UserID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Security record deleted",
		"record":  rec,
	})
}

// ClearAll removes every security record
// @Summary Clear all security records
// @Description Permanently remove every security record; counts and locks start fresh
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Records cleared"
// @Router /auth/security/records [delete]
func (h *SecurityAdminHandler) ClearAll(c *gin.Context) {
	deleted, err := h.guard.AdminClearAll(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "security.clear_all", "", fmt.Sprintf("cleared %d security records", deleted))

	c.JSON(http.StatusOK, gin.H{
		"message": "All security records cleared",
		"deleted": deleted,
	})
}

// Reset clears the failure count for one account
// @Summary Reset failed login count
// @Description Zero the failed login count and release any lock for one account
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reset body ResetRequest true "Account to reset"
// @Success 200 {object} security.State "Post-reset state"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /auth/security/reset [post]
func (h *SecurityAdminHandler) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.guard.RecordSuccessfulLogin(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "security.reset", req.UserID, "reset failed login count")

	c.JSON(http.StatusOK, state)
}

// ListRecords pages through security records
// @Summary List security records
// @Description Page through security records, optionally filtered to locked accounts
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filter.account_locked query boolean false "Filter by lock state"
// @Param filter.user_id query string false "Filter by user id"
// @Param sort query string false "Sort field (created_at, updated_at, failed_login_count, last_login_attempt)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} map[string]interface{} "Paged security records"
// @Failure 500 {object} map[string]string "Failed to retrieve records"
// @Router /auth/security/records [get]
func (h *SecurityAdminHandler) ListRecords(c *gin.Context) {
	params := query.ParseQueryParams(c)

	allowedFilters := map[string]string{
		"account_locked": "account_locked",
		"user_id":        "user_id",
	}

	allowedSortFields := map[string]string{
		"created_at":         "created_at",
		"updated_at":         "updated_at",
		"failed_login_count": "failed_login_count",
		"last_login_attempt": "last_login_attempt",
	}

	dbQuery := h.db.Model(&auth.SecurityRecord{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"user_id", "ip_address"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count security records"})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var records []auth.SecurityRecord
	if err := dbQuery.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve security records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      records,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// Reconcile rewrites legacy identities in security records
// @Summary Reconcile legacy identities
// @Description Rewrite security records keyed by legacy email identities to canonical user ids
// @Tags security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} security.ReconcileReport "Reconciliation report"
// @Router /auth/security/reconcile [post]
func (h *SecurityAdminHandler) Reconcile(c *gin.Context) {
	report, err := h.guard.ReconcileLegacyIdentities(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "security.reconcile", "", fmt.Sprintf("scanned %d, rewrote %d legacy identities", report.Scanned, report.Rewritten))

	c.JSON(http.StatusOK, report)
}

// audit is best effort; a failed audit write never fails the admin action.
func (h *SecurityAdminHandler) audit(c *gin.Context, action, targetID, detail string) {
	entry := notification.AuditLog{
		Action:     action,
		TargetType: "security_record",
		TargetID:   targetID,
		Detail:     detail,
		IPAddress:  c.ClientIP(),
	}
	if actorID, err := uuid.Parse(c.GetString("userID")); err == nil {
		entry.ActorID = &actorID
	}
	h.db.Create(&entry)
}

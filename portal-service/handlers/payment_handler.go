package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/portal-service/middleware"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/utils/query"
)

// PaymentHandler serves rent payment bookkeeping. The actual charge happens
// at an external gateway; these rows only record the outcome.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

var periodKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type CreatePaymentRequest struct {
	UnitID      uuid.UUID `json:"unit_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required,min=1"`
	Method      string    `json:"method" binding:"required,oneof=card ach check"`
	PeriodKey   string    `json:"period_key" binding:"required"`
}

type CompletePaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// CreatePayment godoc
// @Summary Create payment
// @Description Record a pending rent payment for the authenticated tenant
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body CreatePaymentRequest true "Payment data"
// @Success 201 {object} models.Payment
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !periodKeyPattern.MatchString(req.PeriodKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_key must be in YYYY-MM format"})
		return
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", req.UnitID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	// One completed payment per unit per billing period
	var existing int64
	if err := h.db.Model(&models.Payment{}).
		Where("unit_id = ? AND period_key = ? AND status = ?", req.UnitID, req.PeriodKey, models.PaymentStatusCompleted).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing payments"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Rent for this period has already been paid"})
		return
	}

	payment := models.Payment{
		UserID:      userID,
		UnitID:      req.UnitID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Status:      models.PaymentStatusPending,
		PeriodKey:   req.PeriodKey,
	}

	if err := h.db.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ListPayments godoc
// @Summary List payments
// @Description Tenants see their own payments; admins see all, filterable by status and period
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filter[status] query string false "Filter by status (PENDING, COMPLETED, FAILED)"
// @Param filter[period_key] query string false "Filter by billing period (YYYY-MM)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	dbQuery := h.db.Model(&models.Payment{})
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, map[string]string{
		"status":     "status",
		"period_key": "period_key",
		"unit_id":    "unit_id",
	})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payments"})
		return
	}

	dbQuery = query.ApplySort(dbQuery, params.Sort, map[string]string{
		"created_at": "created_at",
		"paid_at":    "paid_at",
		"status":     "status",
	})
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var payments []models.Payment
	if err := dbQuery.Preload("Unit").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      payments,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetPayment godoc
// @Summary Get payment
// @Description Get a single payment; tenants can only access their own
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	userID, _ := middleware.CurrentUserID(c)

	var payment models.Payment
	dbQuery := h.db.Preload("Unit")
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}
	if err := dbQuery.First(&payment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	c.JSON(http.StatusOK, payment)
}

// CompletePayment godoc
// @Summary Complete payment
// @Description Mark a pending payment completed with the gateway reference (admin only)
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param completion body CompletePaymentRequest true "Gateway reference"
// @Success 200 {object} models.Payment
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/payments/{id}/complete [put]
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	// Conditional update keeps a double completion from overwriting the
	// original gateway reference
	now := time.Now()
	result := h.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":    models.PaymentStatusCompleted,
			"reference": req.Reference,
			"paid_at":   now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete payment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not pending"})
		return
	}

	payment.Status = models.PaymentStatusCompleted
	payment.Reference = req.Reference
	payment.PaidAt = &now

	c.JSON(http.StatusOK, payment)
}

// FailPayment godoc
// @Summary Fail payment
// @Description Mark a pending payment failed (admin only)
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/payments/{id}/fail [put]
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	result := h.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Update("status", models.PaymentStatusFailed)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment marked as failed"})
}

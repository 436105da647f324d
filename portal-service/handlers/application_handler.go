package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/portal-service/middleware"
	"dwellport-backend/portal-service/services"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/utils/query"
)

// ApplicationHandler serves rental application submission and review
type ApplicationHandler struct {
	db      *gorm.DB
	storage *services.StorageService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(db *gorm.DB, storage *services.StorageService) *ApplicationHandler {
	return &ApplicationHandler{db: db, storage: storage}
}

type SubmitApplicationRequest struct {
	UnitID        uuid.UUID  `json:"unit_id" binding:"required"`
	MoveInDate    *time.Time `json:"move_in_date"`
	MonthlyIncome int64      `json:"monthly_income" binding:"min=0"`
	Message       string     `json:"message"`
}

type ReviewApplicationRequest struct {
	Status      string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	ReviewNotes string `json:"review_notes"`
}

// SubmitApplication godoc
// @Summary Submit rental application
// @Description Submit a rental application for a vacant unit
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application body SubmitApplicationRequest true "Application data"
// @Success 201 {object} models.Application
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/applications [post]
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", req.UnitID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if unit.Occupied {
		c.JSON(http.StatusConflict, gin.H{"error": "Unit is already occupied"})
		return
	}

	// One pending application per applicant per unit
	var existing int64
	if err := h.db.Model(&models.Application{}).
		Where("applicant_id = ? AND unit_id = ? AND status = ?", userID, req.UnitID, models.ApplicationStatusPending).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing applications"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending application for this unit"})
		return
	}

	application := models.Application{
		ApplicantID:   userID,
		UnitID:        req.UnitID,
		MoveInDate:    req.MoveInDate,
		MonthlyIncome: req.MonthlyIncome,
		Message:       req.Message,
		Status:        models.ApplicationStatusPending,
	}

	if err := h.db.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusCreated, application)
}

// ListApplications godoc
// @Summary List applications
// @Description Tenants see their own applications; admins see all, filterable by status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filter[status] query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/applications [get]
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	dbQuery := h.db.Model(&models.Application{})
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("applicant_id = ?", userID)
	}
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, map[string]string{
		"status":  "status",
		"unit_id": "unit_id",
	})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count applications"})
		return
	}

	dbQuery = query.ApplySort(dbQuery, params.Sort, map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"status":     "status",
	})
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var applications []models.Application
	if err := dbQuery.Preload("Unit").Preload("Unit.Property").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      applications,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetApplication godoc
// @Summary Get application
// @Description Get a single application; tenants can only access their own
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.Application
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	application, ok := h.findAccessible(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, application)
}

// ReviewApplication godoc
// @Summary Review application
// @Description Approve or reject a pending application (admin only). Approval marks the unit occupied.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param review body ReviewApplicationRequest true "Review decision"
// @Success 200 {object} models.Application
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/applications/{id}/review [put]
func (h *ApplicationHandler) ReviewApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	reviewerID, _ := middleware.CurrentUserID(c)

	var req ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.Application
	if err := h.db.First(&application, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if application.Status != models.ApplicationStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Application has already been reviewed"})
		return
	}

	now := time.Now()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       req.Status,
			"review_notes": req.ReviewNotes,
			"reviewed_by":  reviewerID,
			"reviewed_at":  now,
		}
		if err := tx.Model(&application).Updates(updates).Error; err != nil {
			return err
		}

		if req.Status == models.ApplicationStatusApproved {
			// Approval takes the unit off the market and rejects the
			// other pending applications for it
			if err := tx.Model(&models.Unit{}).
				Where("id = ?", application.UnitID).
				Update("occupied", true).Error; err != nil {
				return err
			}
			return tx.Model(&models.Application{}).
				Where("unit_id = ? AND status = ? AND id != ?", application.UnitID, models.ApplicationStatusPending, application.ID).
				Updates(map[string]interface{}{
					"status":       models.ApplicationStatusRejected,
					"review_notes": "Unit is no longer available",
					"reviewed_by":  reviewerID,
					"reviewed_at":  now,
				}).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review application"})
		return
	}

	c.JSON(http.StatusOK, application)
}

// UploadAttachment godoc
// @Summary Upload application attachment
// @Description Attach a supporting document (proof of income etc.) to an application
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param file formData file true "Attachment file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/applications/{id}/attachment [post]
func (h *ApplicationHandler) UploadAttachment(c *gin.Context) {
	application, ok := h.findAccessible(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if err := h.storage.ValidateAttachment(header.Filename, header.Size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	objectKey := fmt.Sprintf("applications/%s/%s", application.ID, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := h.storage.Upload(c.Request.Context(), file, objectKey, header.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
		return
	}

	if err := h.db.Model(application).Update("attachment_key", objectKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment reference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Attachment uploaded successfully",
		"attachment_key": objectKey,
		"file_size":      header.Size,
	})
}

// DownloadAttachment godoc
// @Summary Download application attachment
// @Description Stream the supporting document attached to an application
// @Tags applications
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/applications/{id}/attachment [get]
func (h *ApplicationHandler) DownloadAttachment(c *gin.Context) {
	application, ok := h.findAccessible(c)
	if !ok {
		return
	}

	if application.AttachmentKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application has no attachment"})
		return
	}

	object, err := h.storage.Download(c.Request.Context(), application.AttachmentKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachment"})
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", application.AttachmentKey))
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, object); err != nil {
		// Headers already sent; nothing more to do than log via gin recovery
		return
	}
}

// findAccessible loads the application from the :id param and enforces that
// tenants can only reach their own rows. Writes the error response itself.
func (h *ApplicationHandler) findAccessible(c *gin.Context) (*models.Application, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return nil, false
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	var application models.Application
	dbQuery := h.db.Preload("Unit").Preload("Unit.Property")
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("applicant_id = ?", userID)
	}
	if err := dbQuery.First(&application, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}

	return &application, true
}

package handlers

import (
	"fmt"
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

// ServiceRequestHandler serves tenant maintenance requests
type ServiceRequestHandler struct {
	db      *gorm.DB
	storage *services.StorageService
}

// NewServiceRequestHandler creates a new service request handler
func NewServiceRequestHandler(db *gorm.DB, storage *services.StorageService) *ServiceRequestHandler {
	return &ServiceRequestHandler{db: db, storage: storage}
}

// Allowed status transitions; service requests only move forward
var serviceRequestTransitions = map[string][]string{
	models.ServiceRequestStatusOpen:       {models.ServiceRequestStatusInProgress, models.ServiceRequestStatusClosed},
	models.ServiceRequestStatusInProgress: {models.ServiceRequestStatusResolved, models.ServiceRequestStatusClosed},
	models.ServiceRequestStatusResolved:   {models.ServiceRequestStatusClosed},
}

type CreateServiceRequestRequest struct {
	UnitID      uuid.UUID `json:"unit_id" binding:"required"`
	Category    string    `json:"category" binding:"required,oneof=plumbing electrical hvac other"`
	Description string    `json:"description" binding:"required"`
	Priority    string    `json:"priority" binding:"omitempty,oneof=LOW NORMAL URGENT"`
}

type UpdateServiceRequestStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=IN_PROGRESS RESOLVED CLOSED"`
	ResolutionNote string `json:"resolution_note"`
}

// CreateServiceRequest godoc
// @Summary Create service request
// @Description File a maintenance request for the tenant's unit
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateServiceRequestRequest true "Service request data"
// @Success 201 {object} models.ServiceRequest
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/service-requests [post]
func (h *ServiceRequestHandler) CreateServiceRequest(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", req.UnitID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.ServiceRequestPriorityNormal
	}

	request := models.ServiceRequest{
		UserID:      userID,
		UnitID:      req.UnitID,
		Category:    req.Category,
		Description: req.Description,
		Priority:    priority,
		Status:      models.ServiceRequestStatusOpen,
	}

	if err := h.db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service request"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListServiceRequests godoc
// @Summary List service requests
// @Description Tenants see their own requests; admins see all, filterable by status and priority
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filter[status] query string false "Filter by status (OPEN, IN_PROGRESS, RESOLVED, CLOSED)"
// @Param filter[priority] query string false "Filter by priority (LOW, NORMAL, URGENT)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/service-requests [get]
func (h *ServiceRequestHandler) ListServiceRequests(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	dbQuery := h.db.Model(&models.ServiceRequest{})
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, map[string]string{
		"status":   "status",
		"priority": "priority",
		"category": "category",
	})
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"description", "category"})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count service requests"})
		return
	}

	dbQuery = query.ApplySort(dbQuery, params.Sort, map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"priority":   "priority",
		"status":     "status",
	})
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var requests []models.ServiceRequest
	if err := dbQuery.Preload("Unit").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch service requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      requests,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetServiceRequest godoc
// @Summary Get service request
// @Description Get a single service request; tenants can only access their own
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/service-requests/{id} [get]
func (h *ServiceRequestHandler) GetServiceRequest(c *gin.Context) {
	request, ok := h.findAccessible(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, request)
}

// UpdateStatus godoc
// @Summary Update service request status
// @Description Move a service request through its lifecycle (admin only). Requests only move forward.
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service request ID"
// @Param status body UpdateServiceRequestStatusRequest true "New status"
// @Success 200 {object} models.ServiceRequest
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/service-requests/{id}/status [put]
func (h *ServiceRequestHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service request ID"})
		return
	}

	var req UpdateServiceRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.ServiceRequest
	if err := h.db.First(&request, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service request not found"})
		return
	}

	if !transitionAllowed(request.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot move service request from %s to %s", request.Status, req.Status),
		})
		return
	}

	adminID, _ := middleware.CurrentUserID(c)

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.ServiceRequestStatusResolved || req.Status == models.ServiceRequestStatusClosed {
		now := time.Now()
		updates["resolution_note"] = req.ResolutionNote
		updates["resolved_by"] = adminID
		updates["resolved_at"] = now
	}

	if err := h.db.Model(&request).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service request"})
		return
	}

	c.JSON(http.StatusOK, request)
}

// UploadPhoto godoc
// @Summary Upload service request photo
// @Description Attach a photo of the issue to a service request
// @Tags service-requests
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service request ID"
// @Param file formData file true "Photo file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/service-requests/{id}/photo [post]
func (h *ServiceRequestHandler) UploadPhoto(c *gin.Context) {
	request, ok := h.findAccessible(c)
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

	objectKey := fmt.Sprintf("service-requests/%s/%s", request.ID, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := h.storage.Upload(c.Request.Context(), file, objectKey, header.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	if err := h.db.Model(request).Update("photo_key", objectKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo reference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Photo uploaded successfully",
		"photo_key": objectKey,
		"file_size": header.Size,
	})
}

// transitionAllowed reports whether a status change is legal
func transitionAllowed(from, to string) bool {
	for _, allowed := range serviceRequestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// findAccessible loads the service request from the :id param and enforces
// that tenants can only reach their own rows.
func (h *ServiceRequestHandler) findAccessible(c *gin.Context) (*models.ServiceRequest, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service request ID"})
		return nil, false
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	var request models.ServiceRequest
	dbQuery := h.db.Preload("Unit")
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}
	if err := dbQuery.First(&request, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service request not found"})
		return nil, false
	}

	return &request, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/utils/query"
)

// PropertyHandler serves property and unit management
type PropertyHandler struct {
	db *gorm.DB
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(db *gorm.DB) *PropertyHandler {
	return &PropertyHandler{db: db}
}

// Property request structs

type CreatePropertyRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	ImageURL string `json:"image_url"`
}

type UpdatePropertyRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	ImageURL string `json:"image_url"`
}

type CreateUnitRequest struct {
	Number    string `json:"number" binding:"required"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	RentCents int64  `json:"rent_cents" binding:"required,min=1"`
}

type UpdateUnitRequest struct {
	Number    string `json:"number"`
	Bedrooms  *int   `json:"bedrooms"`
	Bathrooms *int   `json:"bathrooms"`
	RentCents *int64 `json:"rent_cents"`
	Occupied  *bool  `json:"occupied"`
}

// ListProperties godoc
// @Summary List properties
// @Description List properties with optional search and pagination. Public listings surface.
// @Tags properties
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search in name, address and city"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	params := query.ParseQueryParams(c)

	dbQuery := h.db.Model(&models.Property{})
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"name", "address", "city"})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, map[string]string{
		"city":  "city",
		"state": "state",
	})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count properties"})
		return
	}

	dbQuery = query.ApplySort(dbQuery, params.Sort, map[string]string{
		"created_at": "created_at",
		"name":       "name",
		"city":       "city",
	})
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var properties []models.Property
	if err := dbQuery.Preload("Units").Find(&properties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      properties,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetProperty godoc
// @Summary Get property
// @Description Get a property with its units
// @Tags properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property models.Property
	if err := h.db.Preload("Units").First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// CreateProperty godoc
// @Summary Create property
// @Description Create a new property (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param property body CreatePropertyRequest true "Property data"
// @Success 201 {object} models.Property
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := models.Property{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		ImageURL: req.ImageURL,
	}

	if err := h.db.Create(&property).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// UpdateProperty godoc
// @Summary Update property
// @Description Update property fields (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param property body UpdatePropertyRequest true "Property data"
// @Success 200 {object} models.Property
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property models.Property
	if err := h.db.First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.State != "" {
		updates["state"] = req.State
	}
	if req.ZipCode != "" {
		updates["zip_code"] = req.ZipCode
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	if len(updates) > 0 {
		if err := h.db.Model(&property).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
			return
		}
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty godoc
// @Summary Delete property
// @Description Delete a property and its units (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	// Occupied units block deletion
	var occupied int64
	if err := h.db.Model(&models.Unit{}).
		Where("property_id = ? AND occupied = ?", id, true).
		Count(&occupied).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check units"})
		return
	}
	if occupied > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a property with occupied units"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, "id = ?", id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateUnit godoc
// @Summary Create unit
// @Description Add a unit to a property (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param unit body CreateUnitRequest true "Unit data"
// @Success 201 {object} models.Unit
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/properties/{id}/units [post]
func (h *PropertyHandler) CreateUnit(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property models.Property
	if err := h.db.First(&property, "id = ?", propertyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var req CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := models.Unit{
		PropertyID: propertyID,
		Number:     req.Number,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		RentCents:  req.RentCents,
	}

	if err := h.db.Create(&unit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create unit"})
		return
	}

	c.JSON(http.StatusCreated, unit)
}

// UpdateUnit godoc
// @Summary Update unit
// @Description Update unit fields (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Param unit body UpdateUnitRequest true "Unit data"
// @Success 200 {object} models.Unit
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/units/{id} [put]
func (h *PropertyHandler) UpdateUnit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit ID"})
		return
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	var req UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Number != "" {
		updates["number"] = req.Number
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.RentCents != nil {
		updates["rent_cents"] = *req.RentCents
	}
	if req.Occupied != nil {
		updates["occupied"] = *req.Occupied
	}

	if len(updates) > 0 {
		if err := h.db.Model(&unit).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update unit"})
			return
		}
	}

	c.JSON(http.StatusOK, unit)
}

// DeleteUnit godoc
// @Summary Delete unit
// @Description Delete a unit (admin only)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/units/{id} [delete]
func (h *PropertyHandler) DeleteUnit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit ID"})
		return
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if unit.Occupied {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete an occupied unit"})
		return
	}

	if err := h.db.Delete(&unit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete unit"})
		return
	}

	c.Status(http.StatusNoContent)
}

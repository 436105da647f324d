package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/portal-service/middleware"
	"dwellport-backend/shared/clients"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/database/models/notification"
	"dwellport-backend/shared/roles"
	"dwellport-backend/shared/utils/query"
)

// AnnouncementHandler serves community announcements. Publishing writes a
// notification row per recipient, pushes over WebSocket through the
// notification service and fans the announcement out by email.
type AnnouncementHandler struct {
	db *gorm.DB
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(db *gorm.DB) *AnnouncementHandler {
	return &AnnouncementHandler{db: db}
}

type CreateAnnouncementRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Audience string `json:"audience" binding:"omitempty,oneof=ALL TENANTS ADMINS"`
}

type UpdateAnnouncementRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience" binding:"omitempty,oneof=ALL TENANTS ADMINS"`
}

// ListAnnouncements godoc
// @Summary List announcements
// @Description Tenants see published announcements; admins see drafts too
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/announcements [get]
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	params := query.ParseQueryParams(c)

	dbQuery := h.db.Model(&models.Announcement{})
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("published = ?", true)
	}
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"title", "body"})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count announcements"})
		return
	}

	dbQuery = dbQuery.Order("created_at DESC")
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var announcements []models.Announcement
	if err := dbQuery.Find(&announcements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch announcements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      announcements,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetAnnouncement godoc
// @Summary Get announcement
// @Description Get a single announcement; unpublished drafts are admin only
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 200 {object} models.Announcement
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/announcements/{id} [get]
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid announcement ID"})
		return
	}

	var announcement models.Announcement
	dbQuery := h.db.Session(&gorm.Session{})
	if !middleware.IsAdmin(c) {
		dbQuery = dbQuery.Where("published = ?", true)
	}
	if err := dbQuery.First(&announcement, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	c.JSON(http.StatusOK, announcement)
}

// CreateAnnouncement godoc
// @Summary Create announcement
// @Description Create a draft announcement (admin only)
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param announcement body CreateAnnouncementRequest true "Announcement data"
// @Success 201 {object} models.Announcement
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/announcements [post]
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audience := req.Audience
	if audience == "" {
		audience = models.AnnouncementAudienceAll
	}

	announcement := models.Announcement{
		Title:    req.Title,
		Body:     req.Body,
		Audience: audience,
	}

	if err := h.db.Create(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create announcement"})
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

// UpdateAnnouncement godoc
// @Summary Update announcement
// @Description Update a draft announcement (admin only). Published announcements are immutable.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Param announcement body UpdateAnnouncementRequest true "Announcement data"
// @Success 200 {object} models.Announcement
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/announcements/{id} [put]
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid announcement ID"})
		return
	}

	var announcement models.Announcement
	if err := h.db.First(&announcement, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	if announcement.Published {
		c.JSON(http.StatusConflict, gin.H{"error": "Published announcements cannot be edited"})
		return
	}

	var req UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Body != "" {
		updates["body"] = req.Body
	}
	if req.Audience != "" {
		updates["audience"] = req.Audience
	}

	if len(updates) > 0 {
		if err := h.db.Model(&announcement).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update announcement"})
			return
		}
	}

	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncement godoc
// @Summary Delete announcement
// @Description Delete an announcement (admin only)
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/announcements/{id} [delete]
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid announcement ID"})
		return
	}

	if err := h.db.Delete(&models.Announcement{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete announcement"})
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishAnnouncement godoc
// @Summary Publish announcement
// @Description Publish a draft: write notification rows for the audience, broadcast over WebSocket and fan out by email (admin only)
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 200 {object} models.Announcement
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/announcements/{id}/publish [post]
func (h *AnnouncementHandler) PublishAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid announcement ID"})
		return
	}

	adminID, _ := middleware.CurrentUserID(c)

	var announcement models.Announcement
	if err := h.db.First(&announcement, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	if announcement.Published {
		c.JSON(http.StatusConflict, gin.H{"error": "Announcement is already published"})
		return
	}

	recipients, err := h.audienceUsers(announcement.Audience)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve audience"})
		return
	}

	now := time.Now()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&announcement).Updates(map[string]interface{}{
			"published":    true,
			"published_by": adminID,
			"published_at": now,
		}).Error; err != nil {
			return err
		}

		link := fmt.Sprintf("/announcements/%s", announcement.ID)
		for _, user := range recipients {
			entry := notification.Notification{
				UserID: user.ID,
				Type:   notification.TypeAnnouncement,
				Title:  announcement.Title,
				Body:   announcement.Body,
				Link:   link,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish announcement"})
		return
	}

	// Delivery beyond the feed rows is best effort
	h.broadcastAnnouncement(&announcement)
	h.emailAnnouncement(c, &announcement, recipients)

	announcement.Published = true
	announcement.PublishedBy = &adminID
	announcement.PublishedAt = &now

	c.JSON(http.StatusOK, announcement)
}

// audienceUsers resolves an announcement audience to active users
func (h *AnnouncementHandler) audienceUsers(audience string) ([]models.User, error) {
	dbQuery := h.db.Where("status = ?", models.UserStatusActive)

	switch audience {
	case models.AnnouncementAudienceTenants:
		dbQuery = dbQuery.Where("role = ?", string(roles.Tenant))
	case models.AnnouncementAudienceAdmins:
		dbQuery = dbQuery.Where("role = ?", string(roles.Admin))
	}

	var users []models.User
	if err := dbQuery.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// broadcastAnnouncement pushes the announcement to every connected client
// through the notification service's WebSocket manager.
func (h *AnnouncementHandler) broadcastAnnouncement(announcement *models.Announcement) {
	cfg := config.GetConfig()

	payload := map[string]interface{}{
		"message": &notification.WebSocketMessage{
			Type:    "announcement",
			Payload: announcement,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	resp, err := http.Post(
		fmt.Sprintf("%s/ws/send", cfg.NotificationServiceURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		log.Printf("⚠️ Announcement WebSocket broadcast failed: %v", err)
		return
	}
	resp.Body.Close()
}

// emailAnnouncement fans the announcement out by email to its audience
func (h *AnnouncementHandler) emailAnnouncement(c *gin.Context, announcement *models.Announcement, recipients []models.User) {
	if len(recipients) == 0 {
		return
	}

	emails := make([]string, 0, len(recipients))
	for _, user := range recipients {
		if user.Email != "" {
			emails = append(emails, user.Email)
		}
	}
	if len(emails) == 0 {
		return
	}

	notificationClient := clients.NewNotificationClient()
	if err := notificationClient.SendAnnouncementEmail(clients.AnnouncementEmailRequest{
		Emails:   emails,
		Title:    announcement.Title,
		Body:     announcement.Body,
		PostedBy: c.GetString("userEmail"),
	}); err != nil {
		log.Printf("⚠️ Announcement email fan-out failed: %v", err)
	}
}

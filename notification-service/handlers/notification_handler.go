package handlers

import (
	"net/http"
	"time"

	"dwellport-backend/notification-service/services"
	"dwellport-backend/shared/database/models/notification"
	"dwellport-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationHandler serves the in-portal notification feed
type NotificationHandler struct {
	db  *gorm.DB
	hub *services.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB, hub *services.Hub) *NotificationHandler {
	return &NotificationHandler{db: db, hub: hub}
}

// CreateNotificationRequest is the payload for creating a feed entry
type CreateNotificationRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Type   string    `json:"type" binding:"required"`
	Title  string    `json:"title" binding:"required"`
	Body   string    `json:"body"`
	Link   string    `json:"link"`
}

// GetNotifications godoc
// @Summary Get notifications
// @Description Get the notification feed for a user, newest first
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "User ID"
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications [get]
func (nh *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid user_id is required"})
		return
	}

	params := query.ParseQueryParams(c)

	dbQuery := nh.db.Model(&notification.Notification{}).Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		dbQuery = dbQuery.Where("read = ?", false)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	dbQuery = dbQuery.Order("created_at DESC")
	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var notifications []notification.Notification
	if err := dbQuery.Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      notifications,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetNotification godoc
// @Summary Get notification by ID
// @Description Get a specific notification by ID
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} notification.Notification
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/notifications/{id} [get]
func (nh *NotificationHandler) GetNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var notif notification.Notification
	if err := nh.db.First(&notif, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, notif)
}

// CreateNotification godoc
// @Summary Create notification
// @Description Create a feed entry and push it to the user over WebSocket when connected
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body CreateNotificationRequest true "Notification data"
// @Success 201 {object} notification.Notification
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications [post]
func (nh *NotificationHandler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notif := notification.Notification{
		UserID: req.UserID,
		Type:   req.Type,
		Title:  req.Title,
		Body:   req.Body,
		Link:   req.Link,
	}

	if err := nh.db.Create(&notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	// Best effort real-time push; the feed entry is the source of truth
	nh.hub.SendToUser(notif.UserID.String(), &notification.WebSocketMessage{
		Type:    "notification",
		UserID:  notif.UserID.String(),
		Payload: notif,
	})

	c.JSON(http.StatusCreated, notif)
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Description Mark a notification as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} notification.Notification
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [put]
func (nh *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var notif notification.Notification
	if err := nh.db.First(&notif, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	now := time.Now()
	notif.Read = true
	notif.ReadAt = &now
	if err := nh.db.Save(&notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, notif)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Description Mark every unread notification for a user as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/read-all [put]
func (nh *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid user_id is required"})
		return
	}

	now := time.Now()
	result := nh.db.Model(&notification.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"updated": result.RowsAffected,
	})
}

// DeleteNotification godoc
// @Summary Delete notification
// @Description Delete a notification by ID
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/notifications/{id} [delete]
func (nh *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := nh.db.Delete(&notification.Notification{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	c.Status(http.StatusNoContent)
}

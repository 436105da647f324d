package handlers

import (
	"net/http"

	"dwellport-backend/notification-service/services"
	"dwellport-backend/shared/database/models/notification"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler exposes the push hub over HTTP.
type WebSocketHandler struct {
	hub *services.Hub
}

func NewWebSocketHandler(hub *services.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// SendMessageRequest is the payload other services post to push a
// message. An empty user_id broadcasts to every connected client.
type SendMessageRequest struct {
	UserID  string                         `json:"user_id"`
	Message *notification.WebSocketMessage `json:"message" binding:"required"`
}

// Connect godoc
// @Summary WebSocket Connection
// @Description Establish WebSocket connection for real-time notifications
// @Tags websocket
// @Param user_id path string true "User ID"
// @Router /ws/notifications/{user_id} [get]
func (wh *WebSocketHandler) Connect(c *gin.Context) {
	wh.hub.Serve(c)
}

// Send godoc
// @Summary Send WebSocket Message
// @Description Push a real-time message to one user, or to everyone when user_id is empty
// @Tags websocket
// @Accept json
// @Produce json
// @Param payload body SendMessageRequest true "Message payload"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 500 {object} gin.H
// @Router /ws/send [post]
func (wh *WebSocketHandler) Send(c *gin.Context) {
	var request SendMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if request.UserID == "" {
		wh.hub.Broadcast(request.Message)
		c.JSON(http.StatusOK, gin.H{"message": "WebSocket broadcast queued"})
		return
	}

	if err := wh.hub.SendToUser(request.UserID, request.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "WebSocket message sent successfully",
		"user_id": request.UserID,
	})
}

// Stats godoc
// @Summary WebSocket connection stats
// @Description Report the currently connected users
// @Tags websocket
// @Produce json
// @Success 200 {object} gin.H
// @Router /ws/stats [get]
func (wh *WebSocketHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connections": wh.hub.ConnectionCount(),
		"users":       wh.hub.ConnectedUsers(),
	})
}

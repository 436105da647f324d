package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dwellport-backend/shared/database/models/auth"
	"dwellport-backend/shared/utils/query"
)

// SessionResponse represents a user session in the response
type SessionResponse struct {
	ID               uuid.UUID `json:"id"`
	DeviceInfo       string    `json:"device_info"`
	IPAddress        string    `json:"ip_address"`
	LastUsedAt       time.Time `json:"last_used_at"`
	CreatedAt        time.Time `json:"created_at"`
	IsCurrentSession bool      `json:"is_current_session"`
}

// ListSessions lists all active sessions for the authenticated user
// @Summary List user sessions
// @Description Get all active sessions for the currently authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param sort query string false "Sort field (created_at, updated_at, last_used_at)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} map[string]interface{} "List of user sessions"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to retrieve sessions"
// @Router /auth/sessions [get]
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	allowedSortFields := map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"last_used_at": "updated_at",
	}

	currentTokenHash, _ := c.Get("tokenHash")

	dbQuery := h.db.Model(&auth.UserSession{}).Where("user_id = ? AND is_active = ?", userID, true)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sessions"})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var sessions []auth.UserSession
	if err := dbQuery.Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	var response []SessionResponse
	for _, session := range sessions {
		isCurrentSession := false
		if currentTokenHash != nil && session.TokenHash == currentTokenHash.(string) {
			isCurrentSession = true
		}

		response = append(response, SessionResponse{
			ID:               session.ID,
			DeviceInfo:       parseUserAgent(session.UserAgent),
			IPAddress:        session.IPAddress,
			LastUsedAt:       session.UpdatedAt,
			CreatedAt:        session.CreatedAt,
			IsCurrentSession: isCurrentSession,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      response,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// TerminateSession terminates a specific session
// @Summary Terminate session
// @Description Terminate a specific user session by ID
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID to terminate"
// @Success 200 {object} map[string]string "Session terminated successfully"
// @Failure 400 {object} map[string]string "Session ID is required or invalid format"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to terminate session"
// @Router /auth/sessions/{id} [delete]
func (h *AuthHandler) TerminateSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessionUUID, err := uuid.Parse(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	currentTokenHash, _ := c.Get("tokenHash")

	var session auth.UserSession
	if err := h.db.Where("id = ? AND user_id = ?", sessionUUID, userID).First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or does not belong to the user"})
		return
	}

	if currentTokenHash != nil && session.TokenHash == currentTokenHash.(string) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot terminate the current session"})
		return
	}

	if err := h.db.Model(&auth.UserSession{}).
		Where("id = ? AND user_id = ?", sessionUUID, userID).
		Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session terminated successfully"})
}

// TerminateAllSessions terminates all sessions except the current one
// @Summary Terminate all sessions
// @Description Terminate all active sessions for the current user except the current session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "All other sessions terminated successfully"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to terminate sessions"
// @Router /auth/sessions/terminate-all [post]
func (h *AuthHandler) TerminateAllSessions(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	currentTokenHash, _ := c.Get("tokenHash")

	if err := h.db.Model(&auth.UserSession{}).
		Where("user_id = ? AND token_hash != ? AND is_active = ?", userID, currentTokenHash, true).
		Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All other sessions terminated successfully"})
}

// parseUserAgent extracts useful device info from user agent string
func parseUserAgent(userAgent string) string {
	if userAgent == "" {
		return "Unknown"
	}

	if strings.Contains(userAgent, "iPhone") || strings.Contains(userAgent, "iPad") {
		return "iOS Device"
	} else if strings.Contains(userAgent, "Android") {
		return "Android Device"
	} else if strings.Contains(userAgent, "Windows") {
		return "Windows"
	} else if strings.Contains(userAgent, "Mac") {
		return "MacOS"
	} else if strings.Contains(userAgent, "Linux") {
		return "Linux"
	}

	return "Other"
}

package main

import (
	"log"
	"net/http"
	"strings"

	nconfig "dwellport-backend/notification-service/config"
	"dwellport-backend/notification-service/handlers"
	"dwellport-backend/notification-service/services"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := nconfig.LoadNotificationConfig()

	// Initialize database
	db, err := database.Connect(cfg.Config)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	router := gin.Default()

	emailService := services.NewEmailService(cfg)
	hub := services.NewHub(cfg.FrontendURL)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "notification-service",
			"status":  "healthy",
		})
	})

	// Email routes
	emailHandler := handlers.NewEmailHandler(emailService, cfg)
	emailRoutes := router.Group("/api/notifications/email")
	{
		emailRoutes.POST("/send", emailHandler.SendEmail)
		emailRoutes.POST("/verification", emailHandler.SendVerificationEmail)
		emailRoutes.POST("/resend-verification", emailHandler.ResendVerificationEmail)
		emailRoutes.POST("/password-reset", emailHandler.SendPasswordResetEmail)
		emailRoutes.POST("/lockout-alert", emailHandler.SendLockoutAlertEmail)
		emailRoutes.POST("/announcement", emailHandler.SendAnnouncementEmail)
	}

	// Notification feed routes
	notificationHandler := handlers.NewNotificationHandler(db, hub)
	router.GET("/api/notifications", notificationHandler.GetNotifications)
	router.GET("/api/notifications/:id", notificationHandler.GetNotification)
	router.POST("/api/notifications", notificationHandler.CreateNotification)
	router.PUT("/api/notifications/:id/read", notificationHandler.MarkAsRead)
	router.PUT("/api/notifications/read-all", notificationHandler.MarkAllAsRead)
	router.DELETE("/api/notifications/:id", notificationHandler.DeleteNotification)

	// WebSocket routes; /ws/send is how the other services push
	wsHandler := handlers.NewWebSocketHandler(hub)
	router.GET("/ws/notifications/:user_id", wsHandler.Connect)
	router.POST("/ws/send", wsHandler.Send)
	router.GET("/ws/stats", wsHandler.Stats)

	port := strings.Split(cfg.NotificationServiceURL, ":")[2]
	log.Printf("🔔 Notification Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}

package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dwellport-backend/portal-service/handlers"
	"dwellport-backend/portal-service/middleware"
	"dwellport-backend/portal-service/services"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	// Attachment storage
	storage, err := services.NewStorageService()
	if err != nil {
		log.Fatalf("Failed to initialize attachment storage: %v", err)
	}

	// Initialize handlers
	propertyHandler := handlers.NewPropertyHandler(db)
	applicationHandler := handlers.NewApplicationHandler(db, storage)
	paymentHandler := handlers.NewPaymentHandler(db)
	serviceRequestHandler := handlers.NewServiceRequestHandler(db, storage)
	announcementHandler := handlers.NewAnnouncementHandler(db)

	router := gin.Default()

	// Public listings surface
	router.GET("/api/properties", propertyHandler.ListProperties)
	router.GET("/api/properties/:id", propertyHandler.GetProperty)

	// Property management, admin only
	adminProperties := router.Group("/api", middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		adminProperties.POST("/properties", propertyHandler.CreateProperty)
		adminProperties.PUT("/properties/:id", propertyHandler.UpdateProperty)
		adminProperties.DELETE("/properties/:id", propertyHandler.DeleteProperty)
		adminProperties.POST("/properties/:id/units", propertyHandler.CreateUnit)
		adminProperties.PUT("/units/:id", propertyHandler.UpdateUnit)
		adminProperties.DELETE("/units/:id", propertyHandler.DeleteUnit)
	}

	// Applications
	applicationRoutes := router.Group("/api/applications", middleware.AuthMiddleware())
	{
		applicationRoutes.POST("", applicationHandler.SubmitApplication)
		applicationRoutes.GET("", applicationHandler.ListApplications)
		applicationRoutes.GET("/:id", applicationHandler.GetApplication)
		applicationRoutes.POST("/:id/attachment", applicationHandler.UploadAttachment)
		applicationRoutes.GET("/:id/attachment", applicationHandler.DownloadAttachment)
		applicationRoutes.PUT("/:id/review", middleware.RequireAdmin(), applicationHandler.ReviewApplication)
	}

	// Payments
	paymentRoutes := router.Group("/api/payments", middleware.AuthMiddleware())
	{
		paymentRoutes.POST("", paymentHandler.CreatePayment)
		paymentRoutes.GET("", paymentHandler.ListPayments)
		paymentRoutes.GET("/:id", paymentHandler.GetPayment)
		paymentRoutes.PUT("/:id/complete", middleware.RequireAdmin(), paymentHandler.CompletePayment)
		paymentRoutes.PUT("/:id/fail", middleware.RequireAdmin(), paymentHandler.FailPayment)
	}

	// Service requests
	serviceRequestRoutes := router.Group("/api/service-requests", middleware.AuthMiddleware())
	{
		serviceRequestRoutes.POST("", serviceRequestHandler.CreateServiceRequest)
		serviceRequestRoutes.GET("", serviceRequestHandler.ListServiceRequests)
		serviceRequestRoutes.GET("/:id", serviceRequestHandler.GetServiceRequest)
		serviceRequestRoutes.POST("/:id/photo", serviceRequestHandler.UploadPhoto)
		serviceRequestRoutes.PUT("/:id/status", middleware.RequireAdmin(), serviceRequestHandler.UpdateStatus)
	}

	// Announcements
	announcementRoutes := router.Group("/api/announcements", middleware.AuthMiddleware())
	{
		announcementRoutes.GET("", announcementHandler.ListAnnouncements)
		announcementRoutes.GET("/:id", announcementHandler.GetAnnouncement)
		announcementRoutes.POST("", middleware.RequireAdmin(), announcementHandler.CreateAnnouncement)
		announcementRoutes.PUT("/:id", middleware.RequireAdmin(), announcementHandler.UpdateAnnouncement)
		announcementRoutes.DELETE("/:id", middleware.RequireAdmin(), announcementHandler.DeleteAnnouncement)
		announcementRoutes.POST("/:id/publish", middleware.RequireAdmin(), announcementHandler.PublishAnnouncement)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "portal",
			"status":  "healthy",
		})
	})

	port := strings.Split(cfg.PortalServiceURL, ":")[2]
	log.Printf("🏠 Portal Service starting on port %s...", port)
	router.Run(":" + port)
}

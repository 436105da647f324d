package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dwellport-backend/api-gateway/middleware"
	"dwellport-backend/api-gateway/routes"
	"dwellport-backend/api-gateway/session"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/roles"
	"dwellport-backend/shared/utils/cache"

	_ "dwellport-backend/docs/swagger"
)

// @title DwellPort API
// @version 1.0
// @description API documentation for the DwellPort property management platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dwellport.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name auth
// @tag.description Authentication and session operations

// @tag.name security
// @tag.description Account lockout administration

// @tag.name properties
// @tag.description Property and unit management

// @tag.name applications
// @tag.description Rental application operations

// @tag.name payments
// @tag.description Rent payment operations

// @tag.name service-requests
// @tag.description Maintenance request operations

// @tag.name announcements
// @tag.description Community announcement operations

// @tag.name notifications
// @tag.description Notification delivery operations

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Session cache and resolver for the access gate
	sessionCache, err := cache.NewSessionCache(cfg)
	if err != nil {
		log.Fatalf("Failed to connect session cache: %v", err)
	}
	defer sessionCache.Close()
	resolver := session.NewResolver(cfg, sessionCache)

	// Initialize global rate limiter
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute) // Cleanup every 5 minutes
	globalRateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	// Error reporting first so it wraps everything else
	router.Use(middleware.InitSentry("api-gateway"))
	defer middleware.FlushSentry()

	// Add CORS middleware
	router.Use(cors.Default())

	// Global rate limiter middleware
	router.Use(rateLimiter.GlobalRateLimitMiddleware(globalRateConfig))

	// Routing gate for page requests; API and asset paths pass through
	router.Use(middleware.AccessGateMiddleware(resolver))

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running", "Port": "8000"})
	})

	// Auth routes (no role required for login/register)
	// Note: Auth Service has its own internal rate limiting on login
	router.Any("/api/auth/*path",
		routes.ProxyToService("auth"))

	// Public portal reads
	router.GET("/api/properties",
		routes.ProxyToService("portal"))
	router.GET("/api/properties/:id",
		routes.ProxyToService("portal"))

	// Portal routes for any authenticated user; handlers scope results by
	// the identity headers the middleware sets.
	router.Any("/api/applications",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/applications/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/applications/:id/*path",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/payments",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/payments/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/service-requests",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/service-requests/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/service-requests/:id/*path",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.Any("/api/payments/:id/*path",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.GET("/api/announcements",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))
	router.GET("/api/announcements/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("portal"))

	// Admin-only portal writes
	router.POST("/api/properties",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.PUT("/api/properties/:id",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.DELETE("/api/properties/:id",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.POST("/api/properties/:id/units",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.Any("/api/units/:id",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.POST("/api/announcements",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.PUT("/api/announcements/:id",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.DELETE("/api/announcements/:id",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))
	router.POST("/api/announcements/:id/publish",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("portal"))

	// Notification service routes
	router.GET("/api/notifications",
		middleware.RequireAuthentication(),
		routes.ProxyToService("notification"))
	router.GET("/api/notifications/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("notification"))
	router.PUT("/api/notifications/:id/read",
		middleware.RequireAuthentication(),
		routes.ProxyToService("notification"))
	router.PUT("/api/notifications/read-all",
		middleware.RequireAuthentication(),
		routes.ProxyToService("notification"))
	router.DELETE("/api/notifications/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("notification"))

	// Email routes; direct sends are admin only, the rest are called
	// service-to-service and only resend-verification is frontend facing
	router.POST("/api/notifications/email/send",
		middleware.RequireRole(roles.Admin),
		routes.ProxyToService("notification"))
	router.POST("/api/notifications/email/resend-verification",
		routes.ProxyToService("notification"))

	// WebSocket routes
	router.GET("/ws/notifications/:user_id",
		routes.ProxyToService("notification"))

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server Start
	port := strings.Split(cfg.APIGatewayURL, ":")[2]
	log.Printf("API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dwellport-backend/auth-service/handlers"
	"dwellport-backend/auth-service/middleware"
	"dwellport-backend/auth-service/security"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database"
	utils "dwellport-backend/shared/utils/auth"
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

	// Account lockout guard
	guard := security.NewGuard(
		security.NewGormStore(db),
		security.NewGormUserDirectory(db),
		security.Policy{
			MaxFailedAttempts:  cfg.LockoutMaxFailedAttempts,
			FailedCountCeiling: cfg.LockoutFailedCountCeil,
		},
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, guard)
	securityHandler := handlers.NewSecurityAdminHandler(db, guard)

	// Rate limiter for the authentication endpoints
	rateLimiter := middleware.NewLoginLimiter(30 * time.Minute)

	// Hourly sweep of expired tokens and sessions
	go func() {
		for range time.Tick(time.Hour) {
			if err := utils.CleanupExpiredTokens(db); err != nil {
				log.Printf("⚠️ Token cleanup failed: %v", err)
			}
		}
	}()

	router := gin.Default()

	// Auth endpoints
	router.POST("/api/auth/login", rateLimiter.LoginRateLimitMiddleware(), authHandler.Login)
	router.POST("/api/auth/logout", authHandler.Logout)
	router.POST("/api/auth/register", rateLimiter.RegistrationRateLimitMiddleware(), authHandler.Register)
	router.POST("/api/auth/refresh", authHandler.Refresh)
	router.POST("/api/auth/resolve-session", authHandler.ResolveSession)

	// Email verification endpoints
	router.POST("/api/auth/create-verification-token", authHandler.CreateVerificationToken)
	router.GET("/api/auth/verify-email/:token", authHandler.VerifyEmail)

	// Password management endpoints
	router.POST("/api/auth/change-password", middleware.AuthMiddleware(), authHandler.ChangePassword)
	router.POST("/api/auth/forgot-password", rateLimiter.PasswordResetRateLimitMiddleware(), authHandler.ForgotPassword)
	router.POST("/api/auth/reset-password", rateLimiter.PasswordResetRateLimitMiddleware(), authHandler.ResetPassword)

	// Session management endpoints
	router.GET("/api/auth/sessions", middleware.AuthMiddleware(), authHandler.ListSessions)
	router.DELETE("/api/auth/sessions/:id", middleware.AuthMiddleware(), authHandler.TerminateSession)
	router.POST("/api/auth/sessions/terminate-all", middleware.AuthMiddleware(), authHandler.TerminateAllSessions)

	// Lockout administration, admin role only
	securityRoutes := router.Group("/api/auth/security", middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		securityRoutes.POST("/unlock", securityHandler.Unlock)
		securityRoutes.POST("/reset", securityHandler.Reset)
		securityRoutes.POST("/reconcile", securityHandler.Reconcile)
		securityRoutes.GET("/records", securityHandler.ListRecords)
		securityRoutes.DELETE("/records", securityHandler.ClearAll)
		securityRoutes.DELETE("/records/:id", securityHandler.DeleteRecord)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(cfg.AuthServiceURL, ":")[2]
	log.Printf("Auth Service starting on port %s...", port)
	router.Run(":" + port)
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret            string
	JWTExpireHours       int
	JWTRefreshExpireDays int

	// API Gateway
	APIGatewayURL string

	// Super Admin (seed)
	SuperAdminEmail    string
	SuperAdminPassword string

	// Redis (gateway session cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Session resolution
	SessionCookieName      string
	SessionCacheTTLSeconds int

	// Email
	EmailFrom     string
	EmailFromName string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPUseTLS    bool

	// Account lockout policy
	LockoutMaxFailedAttempts int
	LockoutFailedCountCeil   int

	// Gateway rate limiting
	RateLimitMaxRequests          int
	RateLimitTimeWindowSeconds    int
	RateLimitBlockDurationMinutes int

	// Login rate limiting (per IP, in front of the lockout guard)
	LoginRateLimitMaxAttempts   int
	LoginRateLimitWindowSeconds int
	LoginRateLimitBlockMinutes  int

	// Frontend URL
	FrontendURL string

	// Service URLs
	AuthServiceURL         string
	PortalServiceURL       string
	NotificationServiceURL string

	// Sentry
	SentryDSN string

	// MinIO (portal attachments)
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string

	// Attachment limits
	AttachmentMaxFileSize  string
	AttachmentAllowedTypes string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "dwellport"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours:       getEnvAsInt("JWT_EXPIRE_HOURS", 3),
		JWTRefreshExpireDays: getEnvAsInt("JWT_REFRESH_EXPIRE_DAYS", 1),

		// API Gateway
		APIGatewayURL: getEnv("API_GATEWAY_URL", "http://localhost:8000"),

		// Super Admin
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@dwellport.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "admin123"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Session resolution
		SessionCookieName:      getEnv("SESSION_COOKIE_NAME", "dwellport_session"),
		SessionCacheTTLSeconds: getEnvAsInt("SESSION_CACHE_TTL_SECONDS", 60),

		// Email
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@dwellport.com"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "DwellPort"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:    getEnvAsBool("SMTP_USE_TLS", false),

		// Account lockout policy
		LockoutMaxFailedAttempts: getEnvAsInt("LOCKOUT_MAX_FAILED_ATTEMPTS", 5),
		LockoutFailedCountCeil:   getEnvAsInt("LOCKOUT_FAILED_COUNT_CEILING", 10),

		// Gateway rate limiting
		RateLimitMaxRequests:          getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitTimeWindowSeconds:    getEnvAsInt("RATE_LIMIT_TIME_WINDOW_SECONDS", 60),
		RateLimitBlockDurationMinutes: getEnvAsInt("RATE_LIMIT_BLOCK_DURATION_MINUTES", 15),

		// Login rate limiting
		LoginRateLimitMaxAttempts:   getEnvAsInt("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", 5),
		LoginRateLimitWindowSeconds: getEnvAsInt("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 300),
		LoginRateLimitBlockMinutes:  getEnvAsInt("LOGIN_RATE_LIMIT_BLOCK_MINUTES", 30),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Service URLs
		AuthServiceURL:         getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		PortalServiceURL:       getEnv("PORTAL_SERVICE_URL", "http://localhost:8002"),
		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8003"),

		// Sentry
		SentryDSN: getEnv("SENTRY_DSN", ""),

		// MinIO
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "dwellport-attachments"),

		// Attachment limits
		AttachmentMaxFileSize:  getEnv("ATTACHMENT_MAX_FILE_SIZE", "25MB"),
		AttachmentAllowedTypes: getEnv("ATTACHMENT_ALLOWED_TYPES", ".pdf,.doc,.docx,.txt,.jpg,.jpeg,.png"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

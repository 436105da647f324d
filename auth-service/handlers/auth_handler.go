package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dwellport-backend/auth-service/security"
	"dwellport-backend/shared/apperrors"
	"dwellport-backend/shared/clients"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/database/models/auth"
	utils "dwellport-backend/shared/utils/auth"
)

type AuthHandler struct {
	db    *gorm.DB
	guard *security.Guard
}

func NewAuthHandler(db *gorm.DB, guard *security.Guard) *AuthHandler {
	return &AuthHandler{db: db, guard: guard}
}

// Login Request/Response structs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@dwellport.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	User         UserInfo  `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UserInfo struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	Status        string    `json:"status"`
}

// Register Request struct
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"user@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"securepassword123"`
	FirstName string `json:"first_name" binding:"required" example:"John"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
}

// Refresh Request struct
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Refresh Response struct
type RefreshResponse struct {
	Token        string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-06-02T19:37:11.076935+03:00"`
}

// ResolveSessionRequest carries the raw session cookie value from the gateway.
type ResolveSessionRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResolveSessionResponse is the identity the gateway's routing gate consumes.
type ResolveSessionResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// CreateVerificationTokenRequest represents the request for creating verification token
type CreateVerificationTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateVerificationTokenResponse represents the response for creating verification token
type CreateVerificationTokenResponse struct {
	Token     string `json:"token"`
	FirstName string `json:"first_name"`
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate a user, start a portal session and return JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 423 {object} map[string]string "Account locked"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientIP := c.ClientIP()

	// Find User by email
	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Lock check runs before the credential check so a locked account gets
	// the distinct message even with the right password. The failed count is
	// never part of the response.
	locked, err := h.guard.IsLocked(c.Request.Context(), user.ID.String())
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Could not verify account status"})
		return
	}
	if locked {
		c.JSON(http.StatusLocked, gin.H{"error": "Account is locked due to too many failed login attempts. Please contact an administrator."})
		return
	}

	// Check if user is active
	if user.Status != models.UserStatusActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	// Check password
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		state, guardErr := h.guard.RecordFailedAttempt(c.Request.Context(), user.ID.String(), clientIP)
		if guardErr != nil {
			c.JSON(apperrors.StatusCode(guardErr), gin.H{"error": "Could not record login attempt"})
			return
		}
		if state.AccountLocked {
			h.sendLockoutAlert(&user, state.FailedLoginCount, clientIP)
			c.JSON(http.StatusLocked, gin.H{"error": "Account is locked due to too many failed login attempts. Please contact an administrator."})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Verified login resets the lockout bookkeeping
	if _, err := h.guard.RecordSuccessfulLogin(c.Request.Context(), user.ID.String()); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Could not record login"})
		return
	}

	token, refreshToken, sessionToken, expiresAt, err := h.startSession(c, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}

	cfg := config.GetConfig()
	c.SetCookie(cfg.SessionCookieName, sessionToken, int(time.Until(expiresAt).Seconds()), "/", "", false, true)

	response := LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User: UserInfo{
			ID:            user.ID,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Role:          user.Role,
			EmailVerified: user.EmailVerified,
			Status:        user.Status,
		},
	}

	c.JSON(http.StatusOK, response)
}

// startSession issues the JWT pair plus the cookie session token and
// persists the session row keyed by the token's hash.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) (token, refreshToken, sessionToken string, expiresAt time.Time, err error) {
	token, err = utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", "", time.Time{}, err
	}

	refreshToken, err = utils.GenerateRefreshJWT(user.ID, user.Email)
	if err != nil {
		return "", "", "", time.Time{}, err
	}

	sessionToken, err = utils.GenerateSessionID()
	if err != nil {
		return "", "", "", time.Time{}, err
	}

	expiresAt = time.Now().Add(utils.GetJWTExpireDuration())
	userSession := auth.UserSession{
		UserID:       user.ID,
		SessionID:    uuid.New().String(),
		TokenHash:    utils.HashSessionToken(sessionToken),
		RefreshToken: refreshToken,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}

	if err = h.db.Create(&userSession).Error; err != nil {
		return "", "", "", time.Time{}, err
	}

	return token, refreshToken, sessionToken, expiresAt, nil
}

// sendLockoutAlert is best effort; a mail failure never blocks the response.
func (h *AuthHandler) sendLockoutAlert(user *models.User, failedCount int, ip string) {
	client := clients.NewNotificationClient()
	_ = client.SendLockoutAlertEmail(clients.LockoutAlertEmailRequest{
		Email:       user.Email,
		Name:        user.FirstName,
		FailedCount: failedCount,
		IPAddress:   ip,
		LockedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// POST /api/auth/resolve-session
// @Summary Resolve session token
// @Description Resolve a session cookie value into the identity behind it; used by the API gateway
// @Tags auth
// @Accept json
// @Produce json
// @Param resolve body ResolveSessionRequest true "Session token"
// @Success 200 {object} handlers.ResolveSessionResponse "Session identity"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unknown or expired session"
// @Router /auth/resolve-session [post]
func (h *AuthHandler) ResolveSession(c *gin.Context) {
	var req ResolveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenHash := utils.HashSessionToken(req.Token)

	var userSession auth.UserSession
	if err := h.db.Where("token_hash = ? AND is_active = ? AND expires_at > ?",
		tokenHash, true, time.Now()).First(&userSession).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown or expired session"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userSession.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown or expired session"})
		return
	}

	now := time.Now()
	h.db.Model(&auth.UserSession{}).Where("id = ?", userSession.ID).Update("last_used_at", now)

	c.JSON(http.StatusOK, ResolveSessionResponse{
		UserID:        user.ID.String(),
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	})
}

// POST /api/auth/logout
// @Summary User logout
// @Description End the current portal session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out successfully"
// @Failure 400 {object} map[string]string "Session token required"
// @Failure 500 {object} map[string]string "Could not logout"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cfg := config.GetConfig()

	sessionToken, err := c.Cookie(cfg.SessionCookieName)
	if err != nil || sessionToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session token required"})
		return
	}

	tokenHash := utils.HashSessionToken(sessionToken)
	if err := h.db.Model(&auth.UserSession{}).
		Where("token_hash = ? AND is_active = ?", tokenHash, true).
		Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not logout"})
		return
	}

	c.SetCookie(cfg.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/auth/register
// @Summary Register new user
// @Description Register a new tenant account
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "User registration data"
// @Success 201 {object} map[string]interface{} "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid request format or validation error"
// @Failure 409 {object} map[string]string "Email already exists"
// @Failure 429 {object} map[string]string "Too many registration attempts"
// @Failure 500 {object} map[string]string "Failed to register user"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Email validation
	if err := utils.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Password validation
	if err := utils.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check email uniqueness
	var existingUser models.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	// Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	// Self-registered accounts always start as tenants; admins are promoted
	// by another admin.
	user := models.User{
		Email:         req.Email,
		Password:      hashedPassword,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Status:        models.UserStatusActive,
		EmailVerified: false,
		Role:          "tenant",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		return
	}

	// Send verification email automatically after registration
	verificationToken, err := utils.CreateEmailVerificationToken(h.db, user.ID)
	if err == nil {
		notificationClient := clients.NewNotificationClient()
		err = notificationClient.SendWelcomeEmail(user.Email, user.FirstName, verificationToken.Token)
	}
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully but verification email failed to send",
			"user": gin.H{
				"id":         user.ID,
				"email":      user.Email,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email to verify your account.",
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
}

// POST /api/auth/refresh
// @Summary Refresh JWT token
// @Description Refresh an expired JWT token using a valid refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "Refresh token"
// @Success 200 {object} handlers.RefreshResponse "Successfully refreshed tokens"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid refresh token or user inactive"
// @Failure 500 {object} map[string]string "Failed to generate new tokens"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Refresh token validation
	claims, err := utils.ValidateRefreshJWT(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	userID, _ := uuid.Parse(claims.UserID)
	var userSession auth.UserSession
	if err := h.db.Where("user_id = ? AND refresh_token = ? AND is_active = ?",
		userID, req.RefreshToken, true).First(&userSession).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not found or expired"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if user.Status != models.UserStatusActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	newToken, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	newRefreshToken, err := utils.GenerateRefreshJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate refresh token"})
		return
	}

	expireDuration := utils.GetJWTExpireDuration()
	userSession.RefreshToken = newRefreshToken
	userSession.ExpiresAt = time.Now().Add(expireDuration)
	userSession.UpdatedAt = time.Now()

	if err := h.db.Save(&userSession).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update session"})
		return
	}

	response := RefreshResponse{
		Token:        newToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    time.Now().Add(expireDuration),
	}

	c.JSON(http.StatusOK, response)
}

// CreateVerificationToken creates a new verification token for email verification
// @Summary Create verification token
// @Description Create a new verification token for user email verification
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CreateVerificationTokenRequest true "Create verification token request"
// @Success 200 {object} CreateVerificationTokenResponse "Verification token created successfully"
// @Failure 400 {object} map[string]string "Invalid request or email already verified"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Failed to create verification token"
// @Router /auth/create-verification-token [post]
func (h *AuthHandler) CreateVerificationToken(c *gin.Context) {
	var req CreateVerificationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.EmailVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already verified"})
		return
	}

	// Invalidate old verification tokens
	if err := utils.InvalidateOldVerificationTokens(h.db, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate old tokens"})
		return
	}

	// Create new verification token
	verificationToken, err := utils.CreateEmailVerificationToken(h.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
		return
	}

	c.JSON(http.StatusOK, CreateVerificationTokenResponse{
		Token:     verificationToken.Token,
		FirstName: user.FirstName,
	})
}

// VerifyEmail verifies the email using the provided token
// @Summary Verify email
// @Description Verify user's email using the provided token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} map[string]interface{} "Email verified successfully with auth tokens"
// @Failure 400 {object} map[string]string "Invalid token"
// @Failure 500 {object} map[string]string "Failed to verify email"
// @Router /auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	user, err := utils.VerifyEmailToken(h.db, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authToken, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"user": gin.H{
			"id":             user.ID,
			"first_name":     user.FirstName,
			"last_name":      user.LastName,
			"email":          user.Email,
			"role":           user.Role,
			"email_verified": user.EmailVerified,
			"status":         user.Status,
		},
		"token":         authToken,
		"refresh_token": refreshToken,
		"expires_at":    time.Now().Add(utils.GetJWTExpireDuration()),
	})
}

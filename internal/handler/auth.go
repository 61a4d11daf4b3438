package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/auth"
	"github.com/cardforge/api/internal/middleware"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/validator"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db           *gorm.DB
	jwtSecret    string
	googleConfig *oauth2.Config
	frontendURL  string
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, googleConfig *oauth2.Config, frontendURL string) *AuthHandler {
	return &AuthHandler{
		db:           db,
		jwtSecret:    jwtSecret,
		googleConfig: googleConfig,
		frontendURL:  frontendURL,
	}
}

type SessionDTO struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type AuthResponse struct {
	User    *model.User `json:"user"`
	Session *SessionDTO `json:"session"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a local account. When the email is already registered it
// returns 200 with null user/session rather than an error status; that
// mirrors the documented contract even though a 409 would be more consistent.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := validator.ValidateEmail(req.Email); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}
	if msg := validator.ValidatePassword(req.Password, 0); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}
	if msg := validator.ValidatePasswordMatch(req.Password, req.ConfirmPassword); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing model.User
	result := h.db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		c.JSON(http.StatusOK, AuthResponse{User: nil, Session: nil})
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		respondError(c, apperr.Classify("failed to check email", result.Error))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperr.Internal("failed to hash password", err))
		return
	}

	user := model.User{
		Email:        email,
		PasswordHash: hash,
		Provider:     model.ProviderLocal,
	}
	if err := h.db.Create(&user).Error; err != nil {
		respondError(c, apperr.Classify("failed to create user", err))
		return
	}

	session, err := h.issueSession(c, &user)
	if err != nil {
		respondError(c, apperr.Internal("failed to issue session", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: &user, Session: session})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := validator.ValidateEmail(req.Email); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}
	if msg := validator.ValidatePassword(req.Password, 0); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user model.User
	result := h.db.Where("email = ? AND provider = ?", email, model.ProviderLocal).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
		return
	}
	if result.Error != nil {
		respondError(c, apperr.Classify("failed to load user", result.Error))
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
		return
	}

	session, err := h.issueSession(c, &user)
	if err != nil {
		respondError(c, apperr.Internal("failed to issue session", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: &user, Session: session})
}

// Logout revokes the refresh token (when provided) and clears the session
// cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		h.db.Model(&model.RefreshToken{}).
			Where("token = ?", req.RefreshToken).
			Update("revoked", true)
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out successfully"})
}

// RefreshToken exchanges a valid refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "refreshToken is required"})
		return
	}

	var refreshToken model.RefreshToken
	result := h.db.Where("token = ? AND revoked = false AND expires_at > ?", req.RefreshToken, time.Now()).First(&refreshToken)
	if result.Error != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired refresh token"})
		return
	}

	var user model.User
	if err := h.db.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user not found"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(&user, h.jwtSecret)
	if err != nil {
		respondError(c, apperr.Internal("failed to generate access token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   int(auth.AccessTokenExpiry.Seconds()),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GoogleAuth redirects to the Google OAuth authorization URL.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := generateState()
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the Google OAuth callback and signs the user in.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	savedState, err := c.Cookie("oauth_state")
	if err != nil || state != savedState {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=invalid_state")
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=no_code")
		return
	}

	token, err := h.googleConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("Failed to exchange code: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=exchange_failed")
		return
	}

	userInfo, err := auth.GetGoogleUserInfo(c.Request.Context(), h.googleConfig, token)
	if err != nil {
		log.Printf("Failed to get user info: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=user_info_failed")
		return
	}

	var user model.User
	result := h.db.Where("provider = ? AND provider_id = ?", model.ProviderGoogle, userInfo.ID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = model.User{
			Provider:   model.ProviderGoogle,
			ProviderID: userInfo.ID,
			Email:      strings.ToLower(userInfo.Email),
			Name:       userInfo.Name,
		}
		if err := h.db.Create(&user).Error; err != nil {
			log.Printf("Failed to create user: %v", err)
			c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=create_user_failed")
			return
		}
	} else if result.Error != nil {
		log.Printf("Failed to find user: %v", result.Error)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=db_error")
		return
	} else {
		h.db.Model(&user).Updates(map[string]interface{}{
			"email":      strings.ToLower(userInfo.Email),
			"name":       userInfo.Name,
			"updated_at": time.Now(),
		})
	}

	session, err := h.issueSession(c, &user)
	if err != nil {
		log.Printf("Failed to issue session: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=token_failed")
		return
	}

	redirectURL := h.frontendURL + "?accessToken=" + session.AccessToken + "&refreshToken=" + session.RefreshToken
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// issueSession generates the access/refresh token pair, persists the refresh
// token, and sets the session cookie.
func (h *AuthHandler) issueSession(c *gin.Context, user *model.User) (*SessionDTO, error) {
	accessToken, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	record := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(auth.RefreshTokenExpiry),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return nil, err
	}

	c.SetCookie(middleware.SessionCookieName, accessToken,
		int(auth.AccessTokenExpiry.Seconds()), "/", "", false, true)

	return &SessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(auth.AccessTokenExpiry.Seconds()),
	}, nil
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

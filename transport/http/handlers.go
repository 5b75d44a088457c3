package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/service"
)

// AuthHandlers contains the HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	auth     *service.AuthService
	accounts *service.AccountService
	sessions *service.SessionService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(auth *service.AuthService, accounts *service.AccountService, sessions *service.SessionService) *AuthHandlers {
	return &AuthHandlers{
		auth:     auth,
		accounts: accounts,
		sessions: sessions,
	}
}

// Challenge issues a server-signed challenge for a wallet public key.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	publicKey := c.Query("publicKey")
	if publicKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "publicKey is required"})
		return
	}

	result, err := h.auth.GenerateChallenge(c.Request.Context(), publicKey)
	if err != nil {
		if errors.Is(err, core.ErrInvalidPublicKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Stellar public key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify exchanges a client-signed challenge for a session token.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		PublicKey       string `json:"publicKey" binding:"required"`
		SignedChallenge string `json:"signedChallenge" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.auth.VerifyChallenge(c.Request.Context(), req.PublicKey, req.SignedChallenge)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Verification failed"

		switch {
		case errors.Is(err, core.ErrChallengeNotFound):
			statusCode = http.StatusUnauthorized
			errorMsg = "No active challenge for this public key"
		case errors.Is(err, core.ErrChallengeExpired):
			statusCode = http.StatusUnauthorized
			errorMsg = "Challenge expired"
		case errors.Is(err, core.ErrInvalidSignature):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid signature"
		case errors.Is(err, core.ErrMalformedChallenge):
			statusCode = http.StatusBadRequest
			errorMsg = "Malformed challenge"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Register creates an email+password account.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	})
}

// Login exchanges email+password credentials for a token pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	pair, err := h.sessions.Open(c.Request.Context(), user, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session"})
		return
	}

	c.JSON(http.StatusOK, pair)
}

// ForgotPassword issues a password reset token. The response never reveals
// whether the email is registered.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	msg, err := h.accounts.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ResetPassword redeems a reset token and sets a new password.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	msg, err := h.accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to reset password"

		switch {
		case errors.Is(err, core.ErrResetTokenExpired):
			statusCode = http.StatusBadRequest
			errorMsg = "Reset token has expired"
		case errors.Is(err, core.ErrInvalidResetToken), errors.Is(err, core.ErrUserNotFound):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid or already used reset token"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Refresh rotates a refresh token and returns a new token pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to refresh tokens"

		switch {
		case errors.Is(err, core.ErrInvalidToken):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid refresh token"
		case errors.Is(err, core.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			errorMsg = "Refresh token expired"
		case errors.Is(err, core.ErrTokenRevoked):
			statusCode = http.StatusUnauthorized
			errorMsg = "Refresh token has been revoked"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout revokes a single refresh token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, core.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// LogoutAll revokes every active refresh token of the authenticated user.
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	n, err := h.sessions.LogoutAll(c.Request.Context(), session.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "revoked": n})
}

// Profile returns the authenticated user's account details.
func (h *AuthHandlers) Profile(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	user, err := h.accounts.Profile(c.Request.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               user.ID,
		"email":            user.Email,
		"stellarPublicKey": user.StellarPublicKey,
		"authType":         session.AuthType,
		"createdAt":        user.CreatedAt,
	})
}

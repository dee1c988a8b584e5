package handler

import (
	"time"

	authapp "github.com/fub-assistant/backend/internal/application/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles the iframe embed handshake and session refresh
type AuthHandler struct {
	BaseHandler
	authService *authapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *authapp.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// IframeLoginRequest carries the signed embed context handed to the widget
type IframeLoginRequest struct {
	Context   string `json:"context" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// IframeLoginResponse is the minted widget session
type IframeLoginResponse struct {
	Token              string    `json:"token"`
	TokenType          string    `json:"token_type"`
	ExpiresAt          time.Time `json:"expires_at"`
	AccountID          int64     `json:"account_id"`
	FUBAccountID       string    `json:"fub_account_id"`
	PersonID           string    `json:"person_id,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	Entitled           bool      `json:"entitled"`
}

// IframeLogin verifies the signed embed context and mints a session token.
// POST /api/v1/auth/iframe-login
func (h *AuthHandler) IframeLogin(c *gin.Context) {
	var req IframeLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "context and signature are required")
		return
	}

	result, err := h.authService.IframeLogin(c.Request.Context(), authapp.IframeLoginInput{
		Context:   req.Context,
		Signature: req.Signature,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, IframeLoginResponse{
		Token:              result.Token.Token,
		TokenType:          result.Token.TokenType,
		ExpiresAt:          result.Token.ExpiresAt,
		AccountID:          result.AccountID,
		FUBAccountID:       result.FUBAccountID,
		PersonID:           result.PersonID,
		SubscriptionStatus: string(result.SubscriptionStatus),
		Entitled:           result.Entitled,
	})
}

// RefreshResponse is a re-minted session token
type RefreshResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Refresh mints a fresh session token for the authenticated account.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	token, err := h.authService.Refresh(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RefreshResponse{
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresAt: token.ExpiresAt,
	})
}

package auth

import (
	"errors"
	"time"

	"github.com/fub-assistant/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType represents the type of JWT token
type TokenType string

// TokenTypeSession is the widget session token minted after the embed handshake
const TokenTypeSession TokenType = "session"

// Common errors
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrInvalidClaims       = errors.New("invalid token claims")
	ErrTokenNotYetValid    = errors.New("token is not yet valid")
	ErrMissingAccountID    = errors.New("missing account_id in claims")
	ErrMissingFUBAccountID = errors.New("missing fub_account_id in claims")
)

// Claims represents custom JWT claims for a widget session
type Claims struct {
	jwt.RegisteredClaims
	AccountID    int64     `json:"account_id"`
	FUBAccountID string    `json:"fub_account_id"`
	TokenType    TokenType `json:"token_type"`
}

// SessionToken represents a minted widget session token
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateSessionToken mints a signed session token for an authenticated account
func (s *JWTService) GenerateSessionToken(accountID int64, fubAccountID string) (*SessionToken, error) {
	if accountID <= 0 {
		return nil, ErrMissingAccountID
	}
	if fubAccountID == "" {
		return nil, ErrMissingFUBAccountID
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   fubAccountID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AccountID:    accountID,
		FUBAccountID: fubAccountID,
		TokenType:    TokenTypeSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &SessionToken{
		Token:     signed,
		ExpiresAt: now.Add(s.expiration),
		TokenType: "Bearer",
	}, nil
}

// ValidateSessionToken validates a session token and returns its claims
func (s *JWTService) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.TokenType != TokenTypeSession {
		return nil, ErrInvalidTokenType
	}
	if claims.AccountID <= 0 {
		return nil, ErrMissingAccountID
	}
	if claims.FUBAccountID == "" {
		return nil, ErrMissingFUBAccountID
	}

	return claims, nil
}

// GetExpiresAtTime returns the expiration time or zero time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GetRemainingTTL returns the remaining time before the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	expiresAt := c.GetExpiresAtTime()
	if expiresAt.IsZero() {
		return 0
	}
	remaining := time.Until(expiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetTokenExpiration returns the configured session token lifetime
func (s *JWTService) GetTokenExpiration() time.Duration {
	return s.expiration
}

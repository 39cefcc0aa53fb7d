package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextKeyAccountID = "accountID"
	ContextKeyRole      = "role"
)

// TokenVerifier verifies a bearer credential and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Browsers cannot set headers on a websocket handshake
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RoleRequired middleware to check if user has required role
func (m *AuthMiddleware) RoleRequired(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrTokenNotFound)
			return
		}

		if role != requiredRole {
			HandleAPIError(c, apperrors.NewForbiddenError("you don't have sufficient permissions for this operation"))
			return
		}

		c.Next()
	}
}

// GetAccountID returns the authenticated account set by JWTAuth
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextKeyAccountID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetRole returns the authenticated role set by JWTAuth
func GetRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}

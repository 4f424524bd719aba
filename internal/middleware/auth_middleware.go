package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/utils"
	"storefront/pkg/logger"
)

const (
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"
)

// AuthRequired middleware validates the bearer session token and sets the
// user context. The token subject is the acting user for every handler
// behind it.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			utils.UnauthorizedResponse(c, "Bearer token required")
			return
		}

		claims, err := utils.ValidatePurposeToken(tokenString, secret, utils.TokenPurposeSession)
		if err != nil {
			utils.UnauthorizedResponse(c, utils.ErrInvalidToken)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID))

		c.Next()
	}
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			utils.UnauthorizedResponse(c, "")
			return
		}

		if !c.GetBool(ContextIsAdmin) {
			utils.ForbiddenResponse(c, "Admin access required")
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated user set by AuthRequired, or "".
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

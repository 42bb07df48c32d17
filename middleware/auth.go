package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// AuthMiddleware verifies the bearer token and stores the caller's id and role on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])

		claims, err := utils.ValidateToken(secret, tok)
		if err != nil {
			utils.Warn("AuthMiddleware: token rejected", map[string]any{"error": err.Error(), "path": c.Request.URL.Path})
			abortUnauthorized(c, "invalid token")
			return
		}
		if claims.UserID == "" {
			abortUnauthorized(c, "token has no user")
			return
		}

		role := claims.Role
		if role == "" {
			role = models.RoleUser
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireRole rejects callers whose role ranks below minimum.
func RequireRole(minimum string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if !models.RoleAtLeast(role, minimum) {
			err := fmt.Errorf("role %q cannot access this route: %w", role, apperrors.ErrForbidden)
			utils.JSONError(c, http.StatusForbidden, err, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("%s: %w", message, apperrors.ErrUnauthorized), message)
	c.Abort()
}

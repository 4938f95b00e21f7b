package middleware

import (
	"context"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserProvisioner creates the local user row for a verified token.
type UserProvisioner interface {
	Ensure(ctx context.Context, id, email string) error
}

// AuthMiddleware verifies a Supabase access token from the Authorization header,
// or the token query parameter for websocket upgrades, and provisions the user.
func AuthMiddleware(secret string, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("Rejected access token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if users != nil {
			if err := users.Ensure(c.Request.Context(), claims.UserID(), claims.Email); err != nil {
				logger.Log.Error("Failed to provision user", zap.String("user_id", claims.UserID()), zap.Error(err))
				util.InternalServerError(c)
				c.Abort()
				return
			}
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id; handlers run behind AuthMiddleware.
func CurrentUserID(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return claims.UserID()
	}
	return ""
}

// Package middleware resolves the acting user for each request.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/logger"
)

const (
	SessionCookie = "warbler_session"

	currentUserKey = "current_user"
	tokenKey       = "session_token"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uint, bool, error)
}

type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// SessionAuth resolves the session token once and stores the acting user on
// the context. Requests without a valid session continue as anonymous; a
// session whose user has since been deleted is anonymous too.
func SessionAuth(sessions SessionResolver, users UserLoader, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}
		c.Set(tokenKey, token)

		userID, ok, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Error("Failed to resolve session")
			abortInternal(c)
			return
		}
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if models.IsNotFound(err) {
				c.Next()
				return
			}
			log.WithError(err).WithField("user_id", userID).Error("Failed to load session user")
			abortInternal(c)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Access unauthorized",
				"code":  models.CodeUnauthorized,
			})
			return
		}
		c.Next()
	}
}

// GetCurrentUser returns the acting user, or nil for anonymous requests.
func GetCurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// GetToken returns the raw session token sent with the request, if any.
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  models.CodeInternal,
	})
}

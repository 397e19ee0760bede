package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

const (
	contextUserKey  = "current_user"
	contextTokenKey = "current_token"
)

// AuthRequired verifies the bearer token with the auth gateway and stores
// the resolved profile on the request context.
func AuthRequired(auth gateway.AuthGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		profile, err := auth.CurrentSession(c, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUserKey, profile)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.UserProfile {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	profile, ok := value.(*model.UserProfile)
	if !ok {
		return nil
	}
	return profile
}

func currentToken(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}

// canManageEvent reports whether the signed-in user may touch an event
// owned by ownerID. Admins and employees manage events on behalf of
// couples.
func canManageEvent(user *model.UserProfile, ownerID string) bool {
	if user == nil {
		return false
	}
	if user.Role == model.RoleAdmin || user.Role == model.RoleEmployee {
		return true
	}
	return user.ID.String() == ownerID
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskflow/internal/auth"
	"taskflow/internal/domain"
	"taskflow/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrincipalKey is the gin context key under which the authenticated
// principal is stored.
const PrincipalKey = "principal"

// UserLoader resolves a user id to its current record. The user row is read
// on every request so role changes apply immediately.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

func JWTAuthMiddleware(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		userID, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		c.Set(PrincipalKey, domain.Principal{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// CurrentPrincipal returns the principal attached by JWTAuthMiddleware.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}

	principal, ok := value.(domain.Principal)
	if !ok {
		return domain.Principal{}, false
	}

	return principal, true
}

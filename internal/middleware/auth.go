package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/pkg/apperror"
	"anoa.com/campusrecruit/pkg/response"
	"anoa.com/campusrecruit/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserFinder is the slice of the user repository the middleware needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type AuthMiddleware struct {
	users  UserFinder
	tokens *token.Manager
}

func NewAuthMiddleware(users UserFinder, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{users: users, tokens: tokens}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

// RequireAuth resolves the bearer token to an existing user and stores the
// principal. A valid token for a deleted user is rejected.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		userID, _, err := m.tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		response.SetPrincipal(c, &authz.Principal{
			UserID: user.ID,
			Role:   user.Role,
			Name:   user.Name,
		})
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := response.GetPrincipal(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if err := authz.RequireRole(p, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRole(entity.RoleAdmin)
}

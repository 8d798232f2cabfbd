package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"fintrack/internal/cache"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/response"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUserName = "userName"
	ContextEmail    = "email"
)

// UserLookup loads the user behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware verifies the bearer token, resolves the user (cache first)
// and rejects tokens of unknown or deactivated users.
func AuthMiddleware(tokens *JWTManager, users UserLookup, userCache cache.UserCache) gin.HandlerFunc {
	if userCache == nil {
		userCache = cache.NopUserCache{}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Error(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			response.Error(c, apperrors.ErrInvalidToken)
			return
		}

		user, err := resolveUser(c.Request.Context(), claims.UserID, users, userCache)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !user.IsActive {
			response.Error(c, apperrors.ErrUserInactive)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUserName, user.Name)
		c.Set(ContextEmail, user.Email)
		c.Next()
	}
}

func resolveUser(ctx context.Context, id string, users UserLookup, userCache cache.UserCache) (*cache.CachedUser, error) {
	if cached, ok := userCache.Get(ctx, id); ok {
		return cached, nil
	}

	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	cached := cache.FromUser(user)
	userCache.Set(ctx, cached)
	return cached, nil
}

// RequireAdmin rejects authenticated users whose role is not admin. It must
// run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != models.UserRoleAdmin {
			response.Error(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" outside AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// GetUserRole returns the authenticated user's role.
func GetUserRole(c *gin.Context) models.UserRole {
	role, _ := c.Get(ContextUserRole)
	r, _ := role.(models.UserRole)
	return r
}

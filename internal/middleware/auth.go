package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-messaging/internal/apperrors"
	"campus-messaging/internal/auth"
	"campus-messaging/internal/models"
	"campus-messaging/internal/repositories"
)

const (
	UserIDKey   = "userID"
	UserNameKey = "username"
)

// TokenValidator resolves a bearer credential to its claims.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// UserLookup confirms the account behind a credential still exists.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

// AuthMiddleware validates the bearer credential and rejects tokens whose
// user has been deleted. The caller id and name are stored under UserIDKey
// and UserNameKey.
func AuthMiddleware(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing authorization")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(c, "invalid authorization header")
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			unauthorized(c, "user not found")
			return
		}
		if err != nil {
			abort(c, apperrors.Internal(err.Error()))
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserNameKey, user.Username)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	abort(c, apperrors.Unauthorized(msg))
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"success": false, "message": err.Message})
}

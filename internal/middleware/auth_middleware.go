package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextRole      = "role"
	ContextSessionID = "sessionID"
)

// Authenticator resolves a bearer token into the current identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthUser, *auth.Claims, error)
}

// AuthMiddleware guards routes with session-backed JWTs
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// JWTAuth requires a valid bearer token whose session row is live
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized,
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authorization header is missing or malformed"))
			return
		}

		user, claims, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextRole, user.Role)
		c.Set(ContextSessionID, claims.SessionID())
		c.Next()
	}
}

// RoleRequired allows the request through only for the given roles.
// Must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized,
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewForbiddenError("This action requires the "+rolesList(roles)+" role"))
		c.Abort()
	}
}

func rolesList(roles []models.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}

func abortWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// GetUserID returns the authenticated account id
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// GetRole returns the authenticated account's role
func GetRole(c *gin.Context) (models.Role, bool) {
	v, ok := c.Get(ContextRole)
	if !ok {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}

// MustUserID returns the authenticated account id or writes a 401 and
// returns false.
func MustUserID(c *gin.Context) (int64, bool) {
	id, ok := GetUserID(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"))
		return 0, false
	}
	return id, true
}

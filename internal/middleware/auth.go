package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/models"
	"github.com/schoolops/presence-api/internal/service"
	"github.com/schoolops/presence-api/pkg/response"
)

// ContextAuthKey is the gin context key storing the resolved identity.
const ContextAuthKey = "currentAuth"

// RequireLevel protects routes by resolving the bearer token and enforcing
// the minimum permission level. Accounts still bootstrapping their password
// are rejected; only the dedicated bootstrap routes accept them.
func RequireLevel(authService *service.AuthService, minLevel models.Level) gin.HandlerFunc {
	return authorize(minLevel, authService.Authorize)
}

// RequireLevelBootstrap is RequireLevel without the password-set gate, for
// the password-set and token-rotation routes.
func RequireLevelBootstrap(authService *service.AuthService, minLevel models.Level) gin.HandlerFunc {
	return authorize(minLevel, authService.AuthorizeBootstrap)
}

func authorize(minLevel models.Level, resolve func(ctx context.Context, token string, minLevel models.Level) (*models.AuthContext, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := resolve(c.Request.Context(), BearerToken(c), minLevel)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextAuthKey, auth)
		c.Next()
	}
}

// BearerToken extracts the opaque token from the Authorization header. A
// bare token without the Bearer prefix is accepted too.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

// CurrentAuth reads the identity a Require middleware attached.
func CurrentAuth(c *gin.Context) (*models.AuthContext, bool) {
	value, exists := c.Get(ContextAuthKey)
	if !exists {
		return nil, false
	}
	auth, ok := value.(*models.AuthContext)
	return auth, ok
}

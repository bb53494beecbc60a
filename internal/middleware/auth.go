package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
)

// PrincipalKey is where the verified caller lands in the gin context.
const PrincipalKey = "principal"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// Require verifies the bearer token and gates on the given access level.
// Missing or bad token is 401; a valid token below the level is 403.
func (am *AuthMiddleware) Require(level string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		principal, err := am.authService.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !allowed(principal, level) {
			am.log.Debug("Access denied", "user", principal.User, "have", principal.Access, "need", level)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func allowed(p *services.Principal, level string) bool {
	switch level {
	case services.AccessGet:
		return p.CanGet()
	case services.AccessSet:
		return p.CanSet()
	case services.AccessAdmin:
		return p.CanAdmin()
	default:
		return false
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

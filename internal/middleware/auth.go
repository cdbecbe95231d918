package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/jbeaudin/maplewood/internal/auth"
	"github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxScopeKey  = "authScope"
)

// RequireScope enforces a bearer session token carrying the given scope.
// Admin tokens also satisfy guest-scoped routes.
func RequireScope(jwt *iauth.JWTService, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(strings.TrimSpace(authz[7:]))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if claims.Scope != scope && claims.Scope != iauth.ScopeAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxScopeKey, claims.Scope)
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key of the authenticated identity.Actor.
const ActorKey = "currentUser"

// AuthMiddleware verifies the bearer JWT and stores the caller as an
// identity.Actor. Users and roles live in an upstream identity provider;
// the token is the only thing consulted.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}

		// 2) ?token=xxx for downloads (QR image, exports)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) tc_token cookie
		if tokenStr == "" {
			if cookie, err := c.Cookie("tc_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ActorKey, identity.Actor{
			UserID: claims.UserID,
			Role:   identity.ParseRole(claims.Role),
		})
		c.Next()
	}
}

// RequireApprover rejects callers without the approver role.
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			c.Abort()
			return
		}
		if !actor.IsApprover() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "approver role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor returns the actor set by AuthMiddleware.
func CurrentActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok && actor.UserID != ""
}

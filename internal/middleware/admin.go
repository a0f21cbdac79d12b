package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/julefagdag/agenda/internal/auth"
	"github.com/julefagdag/agenda/pkg/response"
)

// ContextAdminTokenID is the key for the admin token ID in gin context.
const ContextAdminTokenID = "admin_token_id"

// AdminAuth returns a middleware that requires a valid admin_auth cookie.
func AdminAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			response.Unauthorized(c, "admin authentication required")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired admin session")
			c.Abort()
			return
		}
		c.Set(ContextAdminTokenID, claims.ID)
		c.Next()
	}
}

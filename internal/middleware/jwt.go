package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/circlehub/backend/internal/auth"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/pkg/response"
)

const (
	// ContextUserID is the key for the actor's user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for the actor's role in gin context.
	ContextUserRole = "user_role"
	// ContextUsername is the key for the actor's username in gin context.
	ContextUsername = "username"
)

// JWT returns a middleware that validates the bearer token and sets the
// verified identity (id + role) in context. Handlers trust only these values,
// never identity fields from the request body.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// ActorID returns the authenticated user's ID from context.
func ActorID(c *gin.Context) int64 {
	return c.MustGet(ContextUserID).(int64)
}

// ActorRole returns the authenticated user's role from context.
func ActorRole(c *gin.Context) models.Role {
	return c.MustGet(ContextUserRole).(models.Role)
}

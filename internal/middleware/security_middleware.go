package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartstock/internal/auth"
	"smartstock/internal/models"
)

const userKey = "user"

// Sessions holds the one logged-in user. A token is only honoured while
// its user is still the stored one.
type Sessions interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(secret []byte, sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		// 3. Validate the token using our auth package
		claims, err := auth.ValidateToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 4. The token must belong to the user who is logged in right now,
		// so logout or a later login revokes it
		current, err := sessions.CurrentUser(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to read session"})
			return
		}
		if current == nil || current.ID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has ended, please log in again"})
			return
		}

		// 5. Store user info in the context for the next handler (or AI Agent) to use.
		// The stored user is authoritative for the role.
		c.Set("userID", current.ID)
		c.Set("username", current.Username)
		c.Set("role", current.Role)
		c.Set(userKey, *current)

		c.Next()
	}
}

// CurrentUser returns the user AuthMiddleware attached to the request.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != allowedRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}

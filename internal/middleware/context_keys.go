package middleware

import "github.com/gin-gonic/gin"

// userIDKey stores the authenticated user's ID. The typed key keeps it from
// colliding with anything else placed in the context.
const userIDKey = contextKey("userID")

// GetUserIDFromContext returns the authenticated user ID, checking the Gin
// context map first and falling back to the request context, where the auth
// middlewares store it.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok
	}
	if v := c.Request.Context().Value(userIDKey); v != nil {
		userID, ok := v.(string)
		return userID, ok
	}
	return "", false
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionHeader scopes requests to a cart. It is not authentication.
	SessionHeader = "X-Cart-Session"

	sessionKey = "cart_session"
)

// SessionMiddleware reads the cart session from the request header, minting a
// new one when absent or malformed. The session is echoed on every response.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}

		c.Set(sessionKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// GetSessionFromContext retrieves the cart session from the context
func GetSessionFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return "", false
	}
	sessionID, ok := v.(string)
	return sessionID, ok
}

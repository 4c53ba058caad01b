package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/pkg/errors"
)

// AdminAuth checks the bearer key against a bcrypt hash. With no hash
// configured every admin request is refused.
func AdminAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin API is disabled"})
			c.Abort()
			return
		}

		if err := verifyAdminKey(c.GetHeader("Authorization"), keyHash); err != nil {
			logger.Warn("Rejected admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.String("reason", err.Message),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Message})
			c.Abort()
			return
		}

		c.Next()
	}
}

func verifyAdminKey(authHeader, keyHash string) *errors.ErrUnauthorized {
	if authHeader == "" {
		return &errors.ErrUnauthorized{Message: "missing authorization header"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return &errors.ErrUnauthorized{Message: "invalid authorization header format"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(parts[1])); err != nil {
		return &errors.ErrUnauthorized{Message: "invalid admin key"}
	}
	return nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/storefront/internal/service"
)

// HandleGetSettings handles GET /v1/settings. While the first load is in
// flight it answers 503 so clients never render zero prices.
func HandleGetSettings(settings service.SettingsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := settings.Settings()
		if s == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

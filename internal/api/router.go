package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, registry *cart.Registry, repos *repository.Repositories, settings service.SettingsStore, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "settings_loaded": settings.Settings() != nil})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/settings", handlers.HandleGetSettings(settings))

		// Cart routes are scoped by the X-Cart-Session header
		cartRoutes := v1.Group("/cart")
		cartRoutes.Use(middleware.SessionMiddleware())
		{
			cartRoutes.GET("", handlers.HandleGetCart(registry, repos, settings, logger))
			cartRoutes.DELETE("", handlers.HandleClearCart(registry, repos, settings, logger))
			cartRoutes.POST("/items", handlers.HandleAddItem(registry, repos, settings, logger))
			cartRoutes.PATCH("/items/:product_id/:variant", handlers.HandleUpdateQuantity(registry, repos, settings, logger))
			cartRoutes.DELETE("/items/:product_id/:variant", handlers.HandleRemoveItem(registry, repos, settings, logger))
			cartRoutes.POST("/panel/:action", handlers.HandlePanel(registry))
			cartRoutes.POST("/notification/close", handlers.HandleCloseNotification(registry))
			cartRoutes.POST("/coupon", handlers.HandleApplyCoupon(registry, repos, settings, logger))
			cartRoutes.DELETE("/coupon", handlers.HandleRemoveCoupon(registry, repos, settings, logger))
			cartRoutes.GET("/offers", handlers.HandleListOffers(registry, repos, logger))
		}

		checkoutRoutes := v1.Group("/checkout")
		checkoutRoutes.Use(middleware.SessionMiddleware())
		{
			checkoutRoutes.POST("/snapshot", handlers.HandleCheckoutSnapshot(registry, repos, settings, logger))
		}

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuth(cfg.Admin.KeyHash, logger))
		{
			adminRoutes.PUT("/settings", handlers.HandleUpdateSettings(repos, settings, logger))
			adminRoutes.POST("/coupons", handlers.HandleCreateCoupon(repos, settings, logger))
			adminRoutes.POST("/coupons/:code/products", handlers.HandleAssignCouponProducts(repos, settings, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests and records their latency
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		metric.ObserveRequest(duration, status)
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}

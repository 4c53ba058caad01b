package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/pkg/errors"
)

// HandleCheckoutSnapshot handles POST /v1/checkout/snapshot
func HandleCheckoutSnapshot(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	checkout := service.NewCheckoutService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		snapshot, err := checkout.Snapshot(c.Request.Context(), store)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrPricingPending:
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": e.Error()})
			case *errors.ErrEmptyCart:
				c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
			case *errors.ErrMinimumOrderNotMet:
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":            e.Error(),
					"min_order_amount": e.Minimum,
					"subtotal":         e.Subtotal,
				})
			default:
				logger.Error("Failed to capture checkout snapshot", zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "failed to capture checkout snapshot"})
			}
			return
		}

		c.JSON(http.StatusCreated, snapshot)
	}
}

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

// HandleApplyCoupon handles POST /v1/cart/coupon. An invalid code still
// answers 200; the outcome carries the reason.
func HandleApplyCoupon(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	coupons := service.NewCouponService(repos, logger)
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		var req service.ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		outcome, err := coupons.Apply(c.Request.Context(), store, req.Code)
		if err != nil {
			if _, ok := err.(*errors.ErrValidation); ok {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":   "validation failed",
					"details": err.Error(),
				})
				return
			}
			logger.Error("Failed to apply coupon", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to apply coupon"})
			return
		}

		resp, err := cartResponse(c.Request.Context(), store, pricing)
		if err != nil {
			logger.Error("Failed to price cart", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to price cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"coupon": outcome,
			"cart":   resp,
		})
	}
}

// HandleRemoveCoupon handles DELETE /v1/cart/coupon
func HandleRemoveCoupon(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	coupons := service.NewCouponService(repos, logger)
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		coupons.Remove(store)
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandleListOffers handles GET /v1/cart/offers
func HandleListOffers(registry *cart.Registry, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	coupons := service.NewCouponService(repos, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		offers, err := coupons.OffersForCart(c.Request.Context(), store.State().Items)
		if err != nil {
			logger.Error("Failed to list coupon offers", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list offers"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"offers": offers,
			"count":  len(offers),
		})
	}
}

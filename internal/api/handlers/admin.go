package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/pkg/errors"
)

// adminError maps typed errors from admin writes to responses
func adminError(c *gin.Context, err error, logger *zap.Logger, msg string) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation failed",
			"details": e.Error(),
		})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrReadOnly:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// HandleUpdateSettings handles PUT /v1/admin/settings
func HandleUpdateSettings(repos *repository.Repositories, settings service.SettingsStore, logger *zap.Logger) gin.HandlerFunc {
	admin := service.NewAdminService(repos, settings, logger)
	return func(c *gin.Context) {
		var req service.UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		updated, err := admin.UpdateSettings(c.Request.Context(), req)
		if err != nil {
			adminError(c, err, logger, "Failed to update store settings")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// HandleCreateCoupon handles POST /v1/admin/coupons
func HandleCreateCoupon(repos *repository.Repositories, settings service.SettingsStore, logger *zap.Logger) gin.HandlerFunc {
	admin := service.NewAdminService(repos, settings, logger)
	return func(c *gin.Context) {
		var req service.CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		coupon, err := admin.CreateCoupon(c.Request.Context(), req)
		if err != nil {
			adminError(c, err, logger, "Failed to create coupon")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":             coupon.ID.String(),
			"code":           coupon.Code,
			"discount_type":  coupon.DiscountType,
			"discount_value": coupon.DiscountValue,
			"is_active":      coupon.IsActive,
			"created_at":     coupon.CreatedAt,
		})
	}
}

// HandleAssignCouponProducts handles POST /v1/admin/coupons/:code/products
func HandleAssignCouponProducts(repos *repository.Repositories, settings service.SettingsStore, logger *zap.Logger) gin.HandlerFunc {
	admin := service.NewAdminService(repos, settings, logger)
	return func(c *gin.Context) {
		var req service.AssignProductsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		coupon, err := admin.AssignProducts(c.Request.Context(), c.Param("code"), req.ProductIDs)
		if err != nil {
			adminError(c, err, logger, "Failed to assign coupon products")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":        coupon.Code,
			"product_ids": req.ProductIDs,
		})
	}
}

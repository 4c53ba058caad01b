package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
)

type quoter interface {
	Quote(ctx context.Context, state domain.CartState) (domain.PriceBreakdown, error)
}

// cartStore returns the store of the request's cart session
func cartStore(c *gin.Context, registry *cart.Registry) (*cart.Store, bool) {
	sessionID, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing cart session"})
		return nil, false
	}
	return registry.Get(c.Request.Context(), sessionID), true
}

func cartResponse(ctx context.Context, store *cart.Store, pricing quoter) (service.CartResponse, error) {
	state := store.State()
	breakdown, err := pricing.Quote(ctx, state)
	if err != nil {
		return service.CartResponse{}, err
	}

	count := 0
	for _, item := range state.Items {
		count += item.Quantity
	}
	return service.CartResponse{
		SessionID: store.SessionID(),
		Cart:      state,
		ItemCount: count,
		Breakdown: breakdown,
	}, nil
}

func respondWithCart(c *gin.Context, status int, store *cart.Store, pricing quoter, logger *zap.Logger) {
	resp, err := cartResponse(c.Request.Context(), store, pricing)
	if err != nil {
		logger.Error("Failed to price cart",
			zap.String("session_id", store.SessionID()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to price cart"})
		return
	}
	c.JSON(status, resp)
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}
		if strings.TrimSpace(req.Product.ID) == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": "product.id is required",
			})
			return
		}

		store.AddItem(req.Product, req.VariantKey, req.Quantity)
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandleUpdateQuantity handles PATCH /v1/cart/items/:product_id/:variant
func HandleUpdateQuantity(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		var req service.UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store.UpdateQuantity(c.Param("product_id"), c.Param("variant"), *req.Quantity)
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:product_id/:variant
func HandleRemoveItem(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		store.RemoveItem(c.Param("product_id"), c.Param("variant"))
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(registry *cart.Registry, repos *repository.Repositories, settings service.SettingsSource, logger *zap.Logger) gin.HandlerFunc {
	pricing := service.NewPricingService(repos, settings, logger)
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		store.ClearCart()
		respondWithCart(c, http.StatusOK, store, pricing, logger)
	}
}

// HandlePanel handles POST /v1/cart/panel/:action
func HandlePanel(registry *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		switch c.Param("action") {
		case "toggle":
			store.TogglePanel()
		case "open":
			store.OpenPanel()
		case "close":
			store.ClosePanel()
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown panel action"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"is_cart_panel_open": store.State().IsCartPanelOpen,
		})
	}
}

// HandleCloseNotification handles POST /v1/cart/notification/close
func HandleCloseNotification(registry *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartStore(c, registry)
		if !ok {
			return
		}

		store.CloseNotification()
		c.JSON(http.StatusOK, gin.H{
			"last_added_notification": store.State().LastAddedNotification,
		})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/api/middleware"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// CheckoutHandler serves storefront checkout and payment verification
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates the checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, logger: logger}
}

// Create handles POST /api/checkout
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}

	idemKey := c.GetString(middleware.ContextIdempotencyKey)
	idemHash := c.GetString(middleware.ContextIdempotencyHash)

	resp, err := h.checkoutService.CreateCheckout(c.Request.Context(), idemKey, idemHash, &req)
	if err != nil {
		h.logger.Warn("Checkout failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Verify handles GET /api/checkout/verify?reference=...
func (h *CheckoutHandler) Verify(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		respondError(c, &errors.ErrValidation{Message: "reference is required"})
		return
	}

	resp, err := h.checkoutService.VerifyCheckout(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

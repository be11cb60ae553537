package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// AdminOrdersHandler serves the back-office order endpoints
type AdminOrdersHandler struct {
	admin  *service.AdminService
	logger *zap.Logger
}

// NewAdminOrdersHandler creates the admin orders handler
func NewAdminOrdersHandler(admin *service.AdminService, logger *zap.Logger) *AdminOrdersHandler {
	return &AdminOrdersHandler{admin: admin, logger: logger}
}

// List handles GET /api/admin/orders
func (h *AdminOrdersHandler) List(c *gin.Context) {
	var status *domain.FulfillmentStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.FulfillmentStatus(raw)
		if !s.IsValid() {
			respondError(c, &errors.ErrValidation{Message: "invalid status filter"})
			return
		}
		status = &s
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.admin.ListOrders(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// Get handles GET /api/admin/orders/:id
func (h *AdminOrdersHandler) Get(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	detail, err := h.admin.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Fulfill handles POST /api/admin/orders/:id/fulfill
func (h *AdminOrdersHandler) Fulfill(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var req service.FulfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, &errors.ErrValidation{Message: err.Error()})
			return
		}
	}

	result, err := h.admin.Fulfill(c.Request.Context(), orderID, req.Provider)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FulfillBulk handles POST /api/admin/orders/fulfill-bulk. The response
// always carries one result per requested order id.
func (h *AdminOrdersHandler) FulfillBulk(c *gin.Context) {
	var req service.BulkFulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}
	if len(req.OrderIDs) > 100 {
		respondError(c, &errors.ErrValidation{Message: "at most 100 orders per batch"})
		return
	}

	results := h.admin.FulfillBulk(c.Request.Context(), &req)
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Tracking handles POST /api/admin/orders/:id/tracking
func (h *AdminOrdersHandler) Tracking(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var req service.TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}

	if err := h.admin.UpdateTracking(c.Request.Context(), orderID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// Notes handles POST /api/admin/orders/:id/notes
func (h *AdminOrdersHandler) Notes(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var req service.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}

	if err := h.admin.UpdateNotes(c.Request.Context(), orderID, req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// Delivered handles POST /api/admin/orders/:id/delivered
func (h *AdminOrdersHandler) Delivered(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	if err := h.admin.MarkDelivered(c.Request.Context(), orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// orderID parses the :id path param, responding 400 on garbage
func (h *AdminOrdersHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, &errors.ErrValidation{Message: "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
)

// ProductsHandler serves the storefront catalog
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler creates the catalog handler
func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// List handles GET /api/products
func (h *ProductsHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	products, err := h.catalog.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Get handles GET /api/products/:handle
func (h *ProductsHandler) Get(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListDesigns handles GET /api/designs
func (h *ProductsHandler) ListDesigns(c *gin.Context) {
	limit, offset := pagination(c)
	designs, err := h.catalog.ListDesigns(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"designs": designs, "count": len(designs)})
}

// pagination reads limit/offset query params with safe fallbacks
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "24"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

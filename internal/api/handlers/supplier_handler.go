package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/service"
)

type SupplierHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
}

func NewSupplierHandler(catalog *service.CatalogService, orders *service.OrderService) *SupplierHandler {
	return &SupplierHandler{catalog: catalog, orders: orders}
}

type createSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	InternalName string `json:"internal_name" binding:"required"`
	DeliversOn   int    `json:"delivers_on"`
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeliversOn < 0 || req.DeliversOn > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivers_on must be a weekday between 0 and 6"})
		return
	}
	sup, err := h.catalog.CreateSupplier(c.Request.Context(), req.Name, req.InternalName, time.Weekday(req.DeliversOn))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, sup)
}

func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sup, err := h.catalog.GetSupplier(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

// GetSupplierProduct serves the cached catalog entry, fetching upstream on
// miss or when ?refresh=true. A 404 here means the supplier does not carry
// the SKU.
func (h *SupplierHandler) GetSupplierProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	refresh := c.DefaultQuery("refresh", "false") == "true"
	sp, err := h.catalog.GetSupplierProduct(c.Request.Context(), id, c.Param("sku"), refresh)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if sp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sku not carried by supplier"})
		return
	}
	c.JSON(http.StatusOK, sp)
}

type linkProductRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (h *SupplierHandler) LinkProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req linkProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sp, err := h.catalog.LinkProduct(c.Request.Context(), id, c.Param("sku"), req.ProductID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

type baseStockLevelRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Level     int64 `json:"level"`
}

func (h *SupplierHandler) SetBaseStockLevel(c *gin.Context) {
	var req baseStockLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.catalog.SetBaseStockLevel(c.Request.Context(), req.ProductID, req.Level)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// OrderRefill orders everything forecast to run out before the delivery
// after next.
func (h *SupplierHandler) OrderRefill(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ordered, err := h.orders.OrderRefill(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ordered": ordered})
}

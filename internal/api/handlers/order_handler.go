package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderRequest struct {
	ProductID  int64  `json:"product_id" binding:"required"`
	Qty        int64  `json:"qty" binding:"required"`
	SupplierID *int64 `json:"supplier_id"`
}

func (h *OrderHandler) OrderFromSupplier(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sp, err := h.orders.OrderFromSupplier(c.Request.Context(), req.ProductID, req.Qty, req.SupplierID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ordered": sp})
}

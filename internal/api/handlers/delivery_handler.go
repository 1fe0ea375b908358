package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/service"
)

type DeliveryHandler struct {
	delivery *service.DeliveryService
}

func NewDeliveryHandler(delivery *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

type createDeliveryRequest struct {
	SupplierID int64  `json:"supplier_id" binding:"required"`
	Report     string `json:"report" binding:"required"`
}

func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	var req createDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.delivery.CreateDelivery(c.Request.Context(), req.SupplierID, req.Report)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	d, err := h.delivery.GetDelivery(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	valid, err := h.delivery.Valid(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery": d, "valid": valid})
}

func (h *DeliveryHandler) ListItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.delivery.ListItems(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *DeliveryHandler) Populate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	d, err := h.delivery.Populate(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DeliveryHandler) Process(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.delivery.Process(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": true})
}

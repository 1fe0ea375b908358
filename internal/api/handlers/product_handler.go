package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/service"
)

type ProductHandler struct {
	ledger   *service.LedgerService
	forecast *service.ForecastService
}

func NewProductHandler(ledger *service.LedgerService, forecast *service.ForecastService) *ProductHandler {
	return &ProductHandler{ledger: ledger, forecast: forecast}
}

type createProductRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.ledger.CreateProduct(c.Request.Context(), req.Code, req.Name, req.Category)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.ledger.UpdateProduct(c.Request.Context(), id, patch); err != nil {
		errorResponse(c, err)
		return
	}
	p, err := h.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{Category: c.Query("category")}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	products, err := h.ledger.ListProducts(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.ledger.ListCategories(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetQuantity returns the authoritative quantity summed from the ledger.
func (h *ProductHandler) GetQuantity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	qty, err := h.ledger.CurrentQuantity(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "qty": qty})
}

// GetForecast computes the out-of-stock prediction on the fly.
func (h *ProductHandler) GetForecast(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var target int64
	if raw := c.Query("target"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target"})
			return
		}
		target = parsed
	}
	at, err := h.forecast.PredictQuantity(c.Request.Context(), id, target)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "target": target, "predicted_at": at})
}

type createTransactionRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	TrxType   string `json:"trx_type" binding:"required"`
	Qty       int64  `json:"qty"`
}

func (h *ProductHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trx, err := h.ledger.CreateTransaction(c.Request.Context(), req.ProductID, req.TrxType, req.Qty, domain.Ref{})
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, trx)
}

func (h *ProductHandler) FinalizeTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.FinalizeTransaction(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.TrxStatusFinalized})
}

func (h *ProductHandler) CancelTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.CancelTransaction(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.TrxStatusCanceled})
}

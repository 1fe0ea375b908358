package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/service"
)

type StocktakeHandler struct {
	stocktake *service.StocktakeService
}

func NewStocktakeHandler(stocktake *service.StocktakeService) *StocktakeHandler {
	return &StocktakeHandler{stocktake: stocktake}
}

func (h *StocktakeHandler) Initiate(c *gin.Context) {
	st, err := h.stocktake.Initiate(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *StocktakeHandler) GetStocktake(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	st, err := h.stocktake.GetStocktake(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StocktakeHandler) ListChunks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	chunks, err := h.stocktake.ListChunks(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks})
}

type assignChunkRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// AssignFreeChunk hands the caller a chunk to count. 204 means every chunk
// is taken or done.
func (h *StocktakeHandler) AssignFreeChunk(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req assignChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chunk, err := h.stocktake.AssignFreeChunk(c.Request.Context(), id, req.UserID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if chunk == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, chunk)
}

func (h *StocktakeHandler) ListItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.stocktake.ListItems(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type recordCountRequest struct {
	Qty int64 `json:"qty"`
}

func (h *StocktakeHandler) RecordCount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req recordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.stocktake.RecordCount(c.Request.Context(), id, req.Qty); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

func (h *StocktakeHandler) FinalizeChunk(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.stocktake.FinalizeChunk(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finalized": true})
}

func (h *StocktakeHandler) Finalize(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.stocktake.Finalize(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finalized": true})
}

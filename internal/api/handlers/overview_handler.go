package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/service"
)

type OverviewHandler struct {
	overview *service.OverviewService
}

func NewOverviewHandler(overview *service.OverviewService) *OverviewHandler {
	return &OverviewHandler{overview: overview}
}

func (h *OverviewHandler) GetOverview(c *gin.Context) {
	overview, err := h.overview.GetOverview(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

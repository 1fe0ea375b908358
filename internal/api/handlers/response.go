package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/supplier"
)

// statusFromError maps service errors onto HTTP status codes. Upstream
// supplier failures surface as 502 so callers can tell them apart from our
// own faults.
func statusFromError(err error) int {
	var orderErr *domain.OrderingError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &orderErr), supplier.IsAPIError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

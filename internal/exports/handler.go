package exports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Handler serves pasture history exports.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an exports handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the export route alongside the pasture routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/pastures/:id/export", h.exportHistory)
}

func (h *Handler) exportHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	format := Format(c.DefaultQuery("format", string(FormatExcel)))

	result, err := h.service.ExportPastureHistory(c.Request.Context(), uint(id), format)
	if err != nil {
		switch {
		case pastures.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, pastures.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Error("export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if result.DownloadURL != "" {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Bytes)
}

package mapview

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Handler exposes the map overlay, geometry edit routing, and the tile-source
// catalog.
type Handler struct {
	service *Service
	sources []TileSource
	logger  *zap.Logger
}

// NewHandler creates a mapview handler. sources is served read-only.
func NewHandler(service *Service, sources []TileSource, logger *zap.Logger) *Handler {
	return &Handler{service: service, sources: sources, logger: logger}
}

// RegisterRoutes registers the map routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	mapGroup := router.Group("/map")
	{
		mapGroup.GET("/overlay", h.getOverlay)
		mapGroup.POST("/geometry", h.applyGeometry)
		mapGroup.DELETE("/geometry/:layer_id", h.deleteGeometry)
		mapGroup.GET("/tile-sources", h.listTileSources)
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case pastures.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pastures.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pastures.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("map operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) getOverlay(c *gin.Context) {
	overlay, err := h.service.BuildOverlay(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overlay)
}

func (h *Handler) applyGeometry(c *gin.Context) {
	var update GeometryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ApplyGeometry(c.Request.Context(), &update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) deleteGeometry(c *gin.Context) {
	if err := h.service.DeleteGeometry(c.Request.Context(), c.Param("layer_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listTileSources(c *gin.Context) {
	sources := h.sources
	if sources == nil {
		sources = []TileSource{}
	}
	c.JSON(http.StatusOK, sources)
}

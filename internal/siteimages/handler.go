package siteimages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Handler exposes placement lookups and assignments over REST.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a site-images handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the site-image routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/site-images")
	{
		images.GET("", h.list)
		images.GET("/:key", h.get)
		images.PUT("/:key", h.upsert)
	}
}

func (h *Handler) list(c *gin.Context) {
	images, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("site image list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *Handler) get(c *gin.Context) {
	image, err := h.store.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, pastures.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no image for placement"})
			return
		}
		h.logger.Error("site image lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, image)
}

func (h *Handler) upsert(c *gin.Context) {
	var image SiteImage
	if err := c.ShouldBindJSON(&image); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if image.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	image.PlacementKey = c.Param("key")

	saved, err := h.store.Upsert(c.Request.Context(), &image)
	if err != nil {
		h.logger.Error("site image upsert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

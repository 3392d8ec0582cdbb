package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Handler exposes the public contact form endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a contact handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the contact route.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/contact", h.submit)
}

func (h *Handler) submit(c *gin.Context) {
	var inquiry Inquiry
	if err := c.ShouldBindJSON(&inquiry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Dispatch(c.Request.Context(), &inquiry); err != nil {
		if pastures.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Mail delivery is an upstream dependency; its failures are not ours.
		h.logger.Error("contact dispatch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not deliver message"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

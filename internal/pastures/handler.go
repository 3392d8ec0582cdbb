package pastures

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes pasture management over REST.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a pastures handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers pasture, ledger, and property-map routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	pastures := router.Group("/pastures")
	{
		pastures.GET("", h.listPastures)
		pastures.POST("", h.createPasture)
		pastures.GET("/details", h.listDetails)
		pastures.GET("/:id", h.getPasture)
		pastures.PUT("/:id", h.updatePasture)
		pastures.DELETE("/:id", h.deletePasture)
		pastures.GET("/:id/area", h.getArea)

		pastures.POST("/:id/rotations", h.startRotation)
		pastures.GET("/:id/rotations", h.listPastureRotations)
		pastures.POST("/:id/rest-periods", h.startRestPeriod)
		pastures.GET("/:id/rest-periods", h.listPastureRestPeriods)
		pastures.POST("/:id/observations", h.addObservation)
		pastures.GET("/:id/observations", h.listPastureObservations)
	}

	router.PUT("/rotations/:id/end", h.endRotation)
	router.PUT("/rest-periods/:id/end", h.endRestPeriod)

	router.GET("/property-map", h.getPropertyMap)
	router.PUT("/property-map", h.savePropertyMap)
}

// respondError maps the error taxonomy onto status codes: validation 400,
// missing rows 404, invariant races 409, everything else 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("pasture store operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// =====================================================
// Pastures
// =====================================================

func (h *Handler) listPastures(c *gin.Context) {
	pastures, err := h.service.ListPastures(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pastures)
}

func (h *Handler) createPasture(c *gin.Context) {
	var req CreatePastureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pasture, err := h.service.CreatePasture(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pasture)
}

func (h *Handler) getPasture(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	pasture, err := h.service.GetPasture(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pasture)
}

func (h *Handler) updatePasture(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req UpdatePastureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pasture, err := h.service.UpdatePasture(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pasture)
}

func (h *Handler) deletePasture(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeletePasture(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) getArea(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	acres, err := h.service.ComputeArea(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	// acres is null when geometry is undrawn or degenerate; that is a silent
	// degrade, not an error.
	c.JSON(http.StatusOK, gin.H{"acres": acres})
}

func (h *Handler) listDetails(c *gin.Context) {
	details, err := h.service.ListPasturesWithDetails(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// =====================================================
// Ledger
// =====================================================

func (h *Handler) startRotation(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req StartRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rotation, err := h.service.StartRotation(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rotation)
}

func (h *Handler) endRotation(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req EndRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rotation, err := h.service.EndRotation(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rotation)
}

func (h *Handler) listPastureRotations(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	rotations, err := h.service.ListRotations(c.Request.Context(), &id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rotations)
}

func (h *Handler) startRestPeriod(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req StartRestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rest, err := h.service.StartRestPeriod(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rest)
}

func (h *Handler) endRestPeriod(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req EndRestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rest, err := h.service.EndRestPeriod(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rest)
}

func (h *Handler) listPastureRestPeriods(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	rests, err := h.service.ListRestPeriods(c.Request.Context(), &id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rests)
}

func (h *Handler) addObservation(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req AddObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obs, err := h.service.AddObservation(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obs)
}

func (h *Handler) listPastureObservations(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	observations, err := h.service.ListObservations(c.Request.Context(), &id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, observations)
}

// =====================================================
// Property map
// =====================================================

func (h *Handler) getPropertyMap(c *gin.Context) {
	pm, err := h.service.GetPropertyMap(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if pm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property map not configured"})
		return
	}
	c.JSON(http.StatusOK, pm)
}

func (h *Handler) savePropertyMap(c *gin.Context) {
	var pm PropertyMap
	if err := c.ShouldBindJSON(&pm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.service.SavePropertyMap(c.Request.Context(), &pm)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

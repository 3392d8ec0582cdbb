package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Handler exposes listing management over REST.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an inventory handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers animal and product routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	animals := router.Group("/animals")
	{
		animals.GET("", h.listAnimals)
		animals.POST("", h.createAnimal)
		animals.GET("/:id", h.getAnimal)
		animals.PUT("/:id", h.updateAnimal)
		animals.DELETE("/:id", h.deleteAnimal)
	}

	products := router.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case pastures.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pastures.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("inventory operation failed", zap.Error(err))
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

// filterFromQuery reads the shared list filters off the query string.
func filterFromQuery(c *gin.Context) ListFilter {
	var filter ListFilter
	if raw, ok := c.GetQuery("is_available"); ok {
		if avail, err := strconv.ParseBool(raw); err == nil {
			filter.IsAvailable = &avail
		}
	}
	filter.Category = c.Query("category")
	filter.Species = c.Query("species")
	return filter
}

// =====================================================
// Animals
// =====================================================

func (h *Handler) listAnimals(c *gin.Context) {
	animals, err := h.service.ListAnimals(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animals)
}

func (h *Handler) createAnimal(c *gin.Context) {
	var animal Animal
	if err := c.ShouldBindJSON(&animal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.CreateAnimal(c.Request.Context(), &animal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getAnimal(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	animal, err := h.service.GetAnimal(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *Handler) updateAnimal(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var animal Animal
	if err := c.ShouldBindJSON(&animal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.service.UpdateAnimal(c.Request.Context(), id, &animal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteAnimal(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAnimal(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// =====================================================
// Products
// =====================================================

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	var product Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var product Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.service.UpdateProduct(c.Request.Context(), id, &product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

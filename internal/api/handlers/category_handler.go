package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/services"
)

type CategoryHandler struct {
	service *services.EquipmentService
}

func NewCategoryHandler(service *services.EquipmentService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Statistics returns per-category aggregates for the dashboard.
func (h *CategoryHandler) Statistics(c *gin.Context) {
	stats, err := h.service.CategoryStatistics(c.Request.Context())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("category statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

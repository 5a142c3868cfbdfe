package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/models"
	"github.com/equipstore/backend/internal/services"
)

const itemEntity = "item"

// OperationLogger records user actions for activity monitoring.
type OperationLogger interface {
	LogOperation(ctx context.Context, userID string, action models.OperationAction, entityType string, entityID *string, details interface{})
}

type EquipmentHandler struct {
	service *services.EquipmentService
	oplog   OperationLogger
}

func NewEquipmentHandler(service *services.EquipmentService, oplog OperationLogger) *EquipmentHandler {
	return &EquipmentHandler{service: service, oplog: oplog}
}

type itemRequest struct {
	ID            string  `json:"id"`
	Name          string  `json:"name" binding:"required"`
	Brand         string  `json:"brand"`
	CategoryID    *string `json:"category_id"`
	Price         float64 `json:"price" binding:"gte=0"`
	Description   *string `json:"description"`
	Condition     string  `json:"condition"`
	ImageFilename *string `json:"image_filename"`
	Quantity      *int    `json:"quantity" binding:"omitempty,gte=0"`
}

func (r itemRequest) input() services.ItemInput {
	return services.ItemInput{
		Name:          r.Name,
		Brand:         r.Brand,
		CategoryID:    r.CategoryID,
		Price:         r.Price,
		Description:   r.Description,
		Condition:     r.Condition,
		ImageFilename: r.ImageFilename,
		Quantity:      r.Quantity,
	}
}

type filterRequest struct {
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	CategoryID string   `json:"category_id"`
	Condition  string   `json:"condition"`
	MinPrice   *float64 `json:"min_price"`
	MaxPrice   *float64 `json:"max_price"`
	InStock    *bool    `json:"in_stock"`
	SortBy     string   `json:"sort_by"`
	SortOrder  string   `json:"sort_order"`
}

// List returns the items of the user named by the user_id query parameter.
func (h *EquipmentHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	items, err := h.service.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("fetch items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	item, err := h.service.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("add item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	h.oplog.LogOperation(c.Request.Context(), userID, models.ActionCreate, itemEntity, &item.ID, req)
	c.JSON(http.StatusCreated, item)
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}

	userID := middleware.UserID(c)
	item, err := h.service.Update(c.Request.Context(), userID, req.ID, req.input())
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found or unauthorized"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("update item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	h.oplog.LogOperation(c.Request.Context(), userID, models.ActionUpdate, itemEntity, &item.ID, req)
	c.JSON(http.StatusOK, item)
}

func (h *EquipmentHandler) Delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}

	userID := middleware.UserID(c)
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found or unauthorized"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("delete item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	h.oplog.LogOperation(c.Request.Context(), userID, models.ActionDelete, itemEntity, &id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// Filter searches the whole catalog.
func (h *EquipmentHandler) Filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.service.Filter(c.Request.Context(), services.FilterOptions{
		Name:       req.Name,
		Brand:      req.Brand,
		CategoryID: req.CategoryID,
		Condition:  req.Condition,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		InStock:    req.InStock,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("filter items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to filter items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

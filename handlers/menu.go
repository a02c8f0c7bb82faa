package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	Menu *store.Menu
}

// ListMenu returns menu items, optionally filtered by ?course_id=.
func (h *MenuHandler) ListMenu(c *gin.Context) {
	var courseID uint
	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course_id"})
			return
		}
		courseID = uint(id)
	}

	items, err := h.Menu.List(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateMenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	CourseID    uint    `json:"course_id" binding:"required"`
	Available   *bool   `json:"available"`
}

// CreateMenuItem adds an item. Admins may only write into courses in
// their assignment set; superusers anywhere.
func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !middleware.CanAccessCourse(user, req.CourseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
		return
	}

	item := models.MenuItem{
		CourseID:    req.CourseID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Available:   true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := h.Menu.Create(&item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Available   *bool    `json:"available"`
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	user := middleware.CurrentUser(c)
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.Menu.ByID(itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if !middleware.CanAccessCourse(user, item.CourseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
		return
	}

	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than zero"})
			return
		}
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Available != nil {
		fields["available"] = *req.Available
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	if err := h.Menu.Updates(itemID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}

	updated, err := h.Menu.ByID(itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": updated})
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	user := middleware.CurrentUser(c)
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.Menu.ByID(itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if !middleware.CanAccessCourse(user, item.CourseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
		return
	}

	if err := h.Menu.Delete(itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

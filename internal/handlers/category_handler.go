package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
)

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Order uint   `json:"order"`
}

// POST /api/admin/categories
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}

	category := models.Category{
		Name:  req.Name,
		Order: req.Order,
	}
	if err := db.DB.Create(&category).Error; err != nil {
		logger.From(c).Error("failed to create category", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DELETE /api/admin/categories/:id
//
// The category's products go with it.
func DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	removed, err := models.DeleteCategory(db.DB, uint(id))
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		logger.From(c).Error("failed to delete category", "category_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "deleted_products": removed})
}

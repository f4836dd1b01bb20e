package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
)

type CreateProductRequest struct {
	CategoryID  uint             `json:"category" binding:"required"`
	Title       string           `json:"title" binding:"required,max=200"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Weight      string           `json:"weight" binding:"max=50"`
	Image       *string          `json:"image"`
	IsPopular   bool             `json:"is_popular"`
}

// POST /api/admin/products
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"price": "Ensure this value is greater than or equal to 0."}})
		return
	}

	var category models.Category
	if err := db.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category not found with ID: %d", req.CategoryID)})
			return
		}
		logger.From(c).Error("failed to load category", "category_id", req.CategoryID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	product := models.Product{
		CategoryID:  category.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Weight:      req.Weight,
		Image:       req.Image,
		IsPopular:   req.IsPopular,
	}
	if err := db.DB.Create(&product).Error; err != nil {
		logger.From(c).Error("failed to create product", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
)

// GET /api/status/
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running", "message": "Dacha backend is ready!"})
}

// GET /api/menu/
func GetMenu(c *gin.Context) {
	categories, products, err := models.ListMenu(db.DB)
	if err != nil {
		logger.From(c).Error("failed to list menu", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "products": products})
}

// GET /api/banquet-menus/
func GetBanquetMenus(c *gin.Context) {
	menus, err := models.ListActiveBanquetMenus(db.DB)
	if err != nil {
		logger.From(c).Error("failed to list banquet menus", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load banquet menus"})
		return
	}
	c.JSON(http.StatusOK, menus)
}

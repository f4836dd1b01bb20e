package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
)

type LunchResponse struct {
	ID              uint      `json:"id"`
	Date            string    `json:"date"`
	Salads          string    `json:"salads"`
	Soups           string    `json:"soups"`
	HotDishes       string    `json:"hot_dishes"`
	Garnishes       string    `json:"garnishes"`
	Price3Course    int       `json:"price_3_course"`
	PriceSaladSoup  int       `json:"price_salad_soup"`
	PriceSaladHot   int       `json:"price_salad_hot"`
	PriceSoupHot    int       `json:"price_soup_hot"`
	CreatedAt       time.Time `json:"created_at"`
	DebugServerDate string    `json:"debug_server_date,omitempty"`
}

func NewLunchResponse(l models.BusinessLunch) LunchResponse {
	return LunchResponse{
		ID:             l.ID,
		Date:           models.FormatDate(l.Date),
		Salads:         l.Salads,
		Soups:          l.Soups,
		HotDishes:      l.HotDishes,
		Garnishes:      l.Garnishes,
		Price3Course:   l.Price3Course,
		PriceSaladSoup: l.PriceSaladSoup,
		PriceSaladHot:  l.PriceSaladHot,
		PriceSoupHot:   l.PriceSoupHot,
		CreatedAt:      l.CreatedAt,
	}
}

// GET /api/lunch/
//
// Responds with JSON null when no lunch exists at all.
func GetLunch(c *gin.Context) {
	today := models.Today()

	lunch, err := models.LunchFor(db.DB, today)
	if errors.Is(err, models.ErrLunchNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		logger.From(c).Error("failed to load business lunch", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load business lunch"})
		return
	}

	resp := NewLunchResponse(*lunch)
	resp.DebugServerDate = models.FormatDate(today)
	c.JSON(http.StatusOK, resp)
}

type CreateLunchRequest struct {
	Date           string `json:"date" binding:"required"`
	Salads         string `json:"salads" binding:"required"`
	Soups          string `json:"soups" binding:"required"`
	HotDishes      string `json:"hot_dishes" binding:"required"`
	Garnishes      string `json:"garnishes" binding:"required"`
	Price3Course   *int   `json:"price_3_course" binding:"omitempty,min=0"`
	PriceSaladSoup *int   `json:"price_salad_soup" binding:"omitempty,min=0"`
	PriceSaladHot  *int   `json:"price_salad_hot" binding:"omitempty,min=0"`
	PriceSoupHot   *int   `json:"price_soup_hot" binding:"omitempty,min=0"`
}

// POST /api/admin/lunches
func CreateLunch(c *gin.Context) {
	var req CreateLunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"date": "Date has wrong format. Use YYYY-MM-DD."}})
		return
	}

	lunch := models.BusinessLunch{
		Date:      date,
		Salads:    req.Salads,
		Soups:     req.Soups,
		HotDishes: req.HotDishes,
		Garnishes: req.Garnishes,
	}
	lunch.SetPrices(models.LunchPrices{
		Price3Course:   req.Price3Course,
		PriceSaladSoup: req.PriceSaladSoup,
		PriceSaladHot:  req.PriceSaladHot,
		PriceSoupHot:   req.PriceSoupHot,
	})
	if err := db.DB.Create(&lunch).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A business lunch for this date already exists"})
			return
		}
		logger.From(c).Error("failed to create business lunch", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create business lunch"})
		return
	}

	c.JSON(http.StatusCreated, NewLunchResponse(lunch))
}

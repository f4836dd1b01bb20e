package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/auth"
	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
)

type AddAddressRequest struct {
	Address string `json:"address"`
}

// GET /api/profile/data/
func GetProfileData(c *gin.Context) {
	p := auth.PrincipalFrom(c)
	log := logger.From(c).With("user_id", p.UserID)

	var user models.User
	if err := db.DB.First(&user, p.UserID).Error; err != nil {
		log.Error("failed to load profile user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	orders := []models.Order{}
	if err := db.DB.Where("user_id = ?", p.UserID).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		log.Error("failed to load profile orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	addresses, err := models.ListAddresses(db.DB, p.UserID)
	if err != nil {
		log.Error("failed to load profile addresses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if addresses == nil {
		addresses = []models.UserAddress{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      auth.NewUserResponse(user),
		"orders":    orders,
		"addresses": addresses,
	})
}

// POST /api/profile/address/add/
func AddAddress(c *gin.Context) {
	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	p := auth.PrincipalFrom(c)
	created, err := models.AddAddress(db.DB, p.UserID, address)
	if err != nil {
		logger.From(c).Error("failed to add address", "user_id", p.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add address"})
		return
	}
	c.JSON(http.StatusOK, created)
}

// DELETE /api/profile/address/:id/delete/
func DeleteAddress(c *gin.Context) {
	p := auth.PrincipalFrom(c)

	id, ok := addressID(c)
	if !ok {
		return
	}

	if err := models.DeleteAddress(db.DB, p.UserID, id); err != nil {
		addressError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// POST /api/profile/address/:id/default/
func SetDefaultAddress(c *gin.Context) {
	p := auth.PrincipalFrom(c)

	id, ok := addressID(c)
	if !ok {
		return
	}

	address, err := models.SetDefaultAddress(db.DB, p.UserID, id)
	if err != nil {
		addressError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func addressID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return 0, false
	}
	return uint(id), true
}

// addressError reports foreign and unknown addresses alike.
func addressError(c *gin.Context, p auth.Principal, err error) {
	if errors.Is(err, models.ErrAddressNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}
	logger.From(c).Error("address update failed", "user_id", p.UserID, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update address"})
}

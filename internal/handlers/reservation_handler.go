package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
)

type CreateReservationRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Phone   string `json:"phone" binding:"required,max=20"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Guests  int    `json:"guests" binding:"required,min=1"`
	Comment string `json:"comment"`
}

// ReservationResponse renders dates as YYYY-MM-DD and times as HH:MM:SS.
type ReservationResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Guests    int       `json:"guests"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReservationResponse(r models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Date:      models.FormatDate(r.Date),
		Time:      r.Time.String(),
		Guests:    r.Guests,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// POST /api/reservations/
func CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}

	errs := validation.Errors{}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		errs.Add("date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	clock, err := models.ParseClock(req.Time)
	if err != nil {
		errs.Add("time", "Time has wrong format. Use hh:mm or hh:mm:ss.")
	}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "This field is required.")
	}
	if strings.TrimSpace(req.Phone) == "" {
		errs.Add("phone", "This field is required.")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	reservation := models.Reservation{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Date:    date,
		Time:    clock,
		Guests:  req.Guests,
		Comment: req.Comment,
	}
	if err := db.DB.Create(&reservation).Error; err != nil {
		logger.From(c).Error("failed to create reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reservation"})
		return
	}

	notify.ReservationCreated(c.Request.Context(), reservation)
	c.JSON(http.StatusCreated, gin.H{"status": "success", "reservation_id": reservation.ID})
}

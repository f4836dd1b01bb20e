package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
	"github.com/Fooxyj/dacha/internal/workflow"
)

const dashboardListSize = 10

type CheckNewResponse struct {
	RecentOrders        int64 `json:"recent_orders"`
	RecentReservations  int64 `json:"recent_reservations"`
	PendingOrders       int64 `json:"pending_orders"`
	PlaySound           bool  `json:"play_sound"`
	WindowSeconds       int   `json:"window_seconds"`
	PollIntervalSeconds int   `json:"poll_interval_seconds"`
}

// GET /api/admin/check-new/
//
// Polled by the staff dashboard. Recent counts cover the configured window,
// which is never shorter than the poll interval, so no order is missed
// between two polls.
func CheckNew(c *gin.Context) {
	threshold := time.Now().Add(-admin.RecentWindow)
	resp := CheckNewResponse{
		WindowSeconds:       int(admin.RecentWindow / time.Second),
		PollIntervalSeconds: int(admin.PollInterval / time.Second),
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("created_at > ?", threshold).Count(&resp.RecentOrders).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Reservation{}).Where("created_at > ?", threshold).Count(&resp.RecentReservations).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("status = ?", models.StatusNew).Count(&resp.PendingOrders).Error
	})
	if err != nil {
		logger.From(c).Error("failed to count new orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check new orders"})
		return
	}

	resp.PlaySound = resp.RecentOrders > 0 || resp.RecentReservations > 0
	c.JSON(http.StatusOK, resp)
}

type DashboardResponse struct {
	UniqueVisitors       int                   `json:"unique_visitors"`
	TotalViews           int                   `json:"total_views"`
	RevenueToday         decimal.Decimal       `json:"revenue_today"`
	OrdersCountToday     int64                 `json:"orders_count_today"`
	NewOrdersCount       int64                 `json:"new_orders_count"`
	RevenueTotal         decimal.Decimal       `json:"revenue_total"`
	ReservationsToday    int64                 `json:"reservations_today"`
	UpcomingReservations []ReservationResponse `json:"upcoming_reservations"`
	LatestNewOrders      []models.Order        `json:"latest_new_orders"`
}

// GET /api/admin/dashboard/
//
// Revenue counts every order that is not cancelled, new ones included.
func Dashboard(c *gin.Context) {
	now := time.Now()
	today := models.DateOf(now)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var resp DashboardResponse
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var stats models.DailyStats
		err := tx.Where("date = ?", today).First(&stats).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		resp.UniqueVisitors = stats.UniqueVisitors
		resp.TotalViews = stats.TotalViews

		todayOrders := func() *gorm.DB {
			return tx.Model(&models.Order{}).
				Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
				Where("status <> ?", models.StatusCancelled)
		}
		if err := todayOrders().Select("COALESCE(SUM(total_price), 0)").Scan(&resp.RevenueToday).Error; err != nil {
			return err
		}
		if err := todayOrders().Count(&resp.OrdersCountToday).Error; err != nil {
			return err
		}
		if err := todayOrders().Where("status = ?", models.StatusNew).Count(&resp.NewOrdersCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).
			Where("status <> ?", models.StatusCancelled).
			Select("COALESCE(SUM(total_price), 0)").
			Scan(&resp.RevenueTotal).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Reservation{}).Where("date = ?", today).Count(&resp.ReservationsToday).Error; err != nil {
			return err
		}
		var upcoming []models.Reservation
		if err := tx.Where("date >= ?", today).Order("date, time, id").Limit(dashboardListSize).Find(&upcoming).Error; err != nil {
			return err
		}
		resp.UpcomingReservations = reservationResponses(upcoming)

		resp.LatestNewOrders = []models.Order{}
		return tx.Where("status = ?", models.StatusNew).
			Order("created_at DESC, id DESC").
			Limit(dashboardListSize).
			Find(&resp.LatestNewOrders).Error
	})
	if err != nil {
		logger.From(c).Error("failed to build dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/admin/reservations/
//
// Upcoming reservations, or those of ?date=YYYY-MM-DD.
func ListReservations(c *gin.Context) {
	query := db.DB.Order("date, time, id")
	if raw := c.Query("date"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"date": "Date has wrong format. Use YYYY-MM-DD."}})
			return
		}
		query = query.Where("date = ?", date)
	} else {
		query = query.Where("date >= ?", models.Today())
	}

	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		logger.From(c).Error("failed to list reservations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reservations"})
		return
	}
	c.JSON(http.StatusOK, reservationResponses(reservations))
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/admin/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}

	tr, err := workflow.SetStatus(db.DB, uint(id), models.OrderStatus(req.Status))
	switch {
	case err == nil:
	case errors.Is(err, workflow.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case errors.Is(err, workflow.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"status": "Must be one of: new, kitchen, delivery, completed, cancelled."}})
		return
	case errors.Is(err, workflow.ErrIllegalTransition),
		errors.Is(err, workflow.ErrTerminalStatus),
		errors.Is(err, workflow.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		logger.From(c).Error("failed to update order status", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
		return
	}

	if tr.Changed {
		logger.From(c).Info("order status changed", "order_id", tr.Order.ID, "from", tr.From, "to", tr.Order.Status)
		notify.OrderStatusChanged(c.Request.Context(), tr.Order, tr.From)
	}
	c.JSON(http.StatusOK, tr.Order)
}

func reservationResponses(rs []models.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewReservationResponse(r))
	}
	return out
}

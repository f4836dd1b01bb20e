package handlers_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/handlers"
	"github.com/Fooxyj/dacha/internal/models"
)

func TestAdminRequiresStaff(t *testing.T) {
	env := setupTestRouter(t)
	_, customerCookie := env.createUser(t, "customer", false)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/check-new/"},
		{http.MethodGet, "/api/admin/dashboard/"},
		{http.MethodGet, "/api/admin/reservations/"},
		{http.MethodPatch, "/api/admin/orders/1/status"},
		{http.MethodPost, "/api/admin/categories"},
		{http.MethodDelete, "/api/admin/categories/1"},
		{http.MethodPost, "/api/admin/products"},
		{http.MethodPost, "/api/admin/lunches"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, env.do(p.method, p.path, nil, "").Code, p.path)
		assert.Equal(t, http.StatusForbidden, env.do(p.method, p.path, nil, customerCookie).Code, p.path)
	}
}

func TestCheckNewHandler(t *testing.T) {
	env := setupTestRouter(t)
	_, staffCookie := env.createUser(t, "cook", true)
	handlers.SetAdminConfig(config.AdminConfig{RecentWindow: 30 * time.Second, PollInterval: 10 * time.Second})

	check := func() handlers.CheckNewResponse {
		t.Helper()
		recorder := env.do(http.MethodGet, "/api/admin/check-new/", nil, staffCookie)
		require.Equal(t, http.StatusOK, recorder.Code)
		var resp handlers.CheckNewResponse
		decode(t, recorder, &resp)
		return resp
	}

	old := time.Now().Add(-10 * time.Minute)
	env.createOrder(t, func(o *models.Order) { o.CreatedAt = old })
	env.createOrder(t, func(o *models.Order) { o.CreatedAt = old; o.Status = models.StatusKitchen })

	t.Run("Only old activity", func(t *testing.T) {
		resp := check()
		assert.Equal(t, handlers.CheckNewResponse{
			PendingOrders:       1,
			WindowSeconds:       30,
			PollIntervalSeconds: 10,
		}, resp)
	})

	t.Run("A fresh reservation rings", func(t *testing.T) {
		require.NoError(t, env.db.Create(&models.Reservation{
			Name: "Anna", Phone: "+7", Date: models.Today(), Time: datatypes.NewTime(19, 0, 0, 0), Guests: 2,
		}).Error)

		resp := check()
		assert.Equal(t, int64(0), resp.RecentOrders)
		assert.Equal(t, int64(1), resp.RecentReservations)
		assert.True(t, resp.PlaySound)
	})

	t.Run("A fresh order rings and is pending", func(t *testing.T) {
		env.createOrder(t, nil)

		resp := check()
		assert.Equal(t, int64(1), resp.RecentOrders)
		assert.Equal(t, int64(2), resp.PendingOrders)
		assert.True(t, resp.PlaySound)
	})
}

func TestDashboardHandler(t *testing.T) {
	env := setupTestRouter(t)
	_, staffCookie := env.createUser(t, "manager", true)

	yesterday := time.Now().AddDate(0, 0, -1)
	env.createOrder(t, func(o *models.Order) { o.TotalPrice = decimal.NewFromInt(1000) })
	env.createOrder(t, func(o *models.Order) { o.TotalPrice = decimal.NewFromInt(500); o.Status = models.StatusKitchen })
	env.createOrder(t, func(o *models.Order) { o.TotalPrice = decimal.NewFromInt(700); o.Status = models.StatusCancelled })
	env.createOrder(t, func(o *models.Order) { o.TotalPrice = decimal.NewFromInt(300); o.CreatedAt = yesterday })

	today := models.Today()
	require.NoError(t, env.db.Create(&models.Reservation{Name: "A", Phone: "1", Date: today, Time: datatypes.NewTime(18, 0, 0, 0), Guests: 2}).Error)
	require.NoError(t, env.db.Create(&models.Reservation{Name: "B", Phone: "2", Date: models.DateOf(time.Now().AddDate(0, 0, 3)), Time: datatypes.NewTime(12, 0, 0, 0), Guests: 6}).Error)
	require.NoError(t, env.db.Create(&models.Reservation{Name: "C", Phone: "3", Date: models.DateOf(yesterday), Time: datatypes.NewTime(12, 0, 0, 0), Guests: 1}).Error)
	require.NoError(t, env.db.Create(&models.DailyStats{Date: today, UniqueVisitors: 4, TotalViews: 11}).Error)

	recorder := env.do(http.MethodGet, "/api/admin/dashboard/", nil, staffCookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp handlers.DashboardResponse
	decode(t, recorder, &resp)
	assert.Equal(t, 4, resp.UniqueVisitors)
	assert.Equal(t, 11, resp.TotalViews)
	assert.Equal(t, "1500", resp.RevenueToday.String())
	assert.Equal(t, int64(2), resp.OrdersCountToday)
	assert.Equal(t, int64(1), resp.NewOrdersCount)
	assert.Equal(t, "1800", resp.RevenueTotal.String())
	assert.Equal(t, int64(1), resp.ReservationsToday)
	require.Len(t, resp.UpcomingReservations, 2)
	assert.Equal(t, "A", resp.UpcomingReservations[0].Name)
	assert.Equal(t, "B", resp.UpcomingReservations[1].Name)
	assert.Len(t, resp.LatestNewOrders, 2)

	t.Run("Reservations list", func(t *testing.T) {
		recorder := env.do(http.MethodGet, "/api/admin/reservations/", nil, staffCookie)
		require.Equal(t, http.StatusOK, recorder.Code)
		var list []handlers.ReservationResponse
		decode(t, recorder, &list)
		assert.Len(t, list, 2)

		recorder = env.do(http.MethodGet, "/api/admin/reservations/?date="+models.FormatDate(models.DateOf(yesterday)), nil, staffCookie)
		require.Equal(t, http.StatusOK, recorder.Code)
		decode(t, recorder, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "C", list[0].Name)
		assert.Equal(t, "12:00:00", list[0].Time)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	env := setupTestRouter(t)
	_, staffCookie := env.createUser(t, "cook", true)
	order := env.createOrder(t, nil)
	path := fmt.Sprintf("/api/admin/orders/%d/status", order.ID)

	t.Run("Walks the happy path", func(t *testing.T) {
		for _, status := range []string{"kitchen", "delivery", "completed"} {
			recorder := env.do(http.MethodPatch, path, gin.H{"status": status}, staffCookie)
			require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

			var resp models.Order
			decode(t, recorder, &resp)
			assert.Equal(t, models.OrderStatus(status), resp.Status)
		}
		assert.Equal(t, []models.OrderStatus{
			models.StatusNew, models.StatusKitchen,
			models.StatusKitchen, models.StatusDelivery,
			models.StatusDelivery, models.StatusCompleted,
		}, env.notify.changed)
	})

	t.Run("Completing twice is a silent no-op", func(t *testing.T) {
		recorder := env.do(http.MethodPatch, path, gin.H{"status": "completed"}, staffCookie)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Len(t, env.notify.changed, 6)
	})

	t.Run("Terminal orders stay put", func(t *testing.T) {
		recorder := env.do(http.MethodPatch, path, gin.H{"status": "cancelled"}, staffCookie)
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("Back to new is rejected", func(t *testing.T) {
		fresh := env.createOrder(t, func(o *models.Order) { o.Status = models.StatusKitchen })
		recorder := env.do(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/status", fresh.ID), gin.H{"status": "new"}, staffCookie)
		assert.Equal(t, http.StatusConflict, recorder.Code)

		var stored models.Order
		require.NoError(t, env.db.First(&stored, fresh.ID).Error)
		assert.Equal(t, models.StatusKitchen, stored.Status)
	})

	t.Run("Unknown status and order", func(t *testing.T) {
		recorder := env.do(http.MethodPatch, path, gin.H{"status": "eaten"}, staffCookie)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		recorder = env.do(http.MethodPatch, "/api/admin/orders/99999/status", gin.H{"status": "kitchen"}, staffCookie)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestUpdateOrderStatusConcurrentChange(t *testing.T) {
	env := setupTestRouter(t)
	_, staffCookie := env.createUser(t, "cook", true)
	order := env.createOrder(t, nil)

	// Another staff member cancels the order between the read and the write.
	var once sync.Once
	err := env.db.Callback().Update().Before("gorm:update").Register("test:cancel_before_update", func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" {
			return
		}
		once.Do(func() {
			_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
				"UPDATE orders SET status = ? WHERE id = ?", string(models.StatusCancelled), order.ID)
			if err != nil {
				_ = tx.AddError(err)
			}
		})
	})
	require.NoError(t, err)

	recorder := env.do(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/status", order.ID), gin.H{"status": "kitchen"}, staffCookie)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "changed concurrently")
	assert.Empty(t, env.notify.changed)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

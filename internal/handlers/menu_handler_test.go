package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Fooxyj/dacha/internal/handlers"
	"github.com/Fooxyj/dacha/internal/models"
)

func TestGetMenuHandler(t *testing.T) {
	env := setupTestRouter(t)

	soups := models.Category{Name: "Супы", Order: 2}
	pizza := models.Category{Name: "Пицца", Order: 1}
	require.NoError(t, env.db.Create(&soups).Error)
	require.NoError(t, env.db.Create(&pizza).Error)
	require.NoError(t, env.db.Create(&models.Product{CategoryID: soups.ID, Title: "Борщ", Price: decimal.NewFromInt(320)}).Error)

	recorder := env.do(http.MethodGet, "/api/menu/", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Categories []models.Category `json:"categories"`
		Products   []struct {
			Category uint   `json:"category"`
			Title    string `json:"title"`
			Price    string `json:"price"`
		} `json:"products"`
	}
	decode(t, recorder, &resp)

	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Пицца", resp.Categories[0].Name)
	assert.Equal(t, "Супы", resp.Categories[1].Name)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, soups.ID, resp.Products[0].Category)
	assert.Equal(t, "320", resp.Products[0].Price)
}

func TestGetLunchHandler(t *testing.T) {
	env := setupTestRouter(t)
	now := time.Now()
	today := models.FormatDate(models.DateOf(now))

	t.Run("No lunch at all is null", func(t *testing.T) {
		recorder := env.do(http.MethodGet, "/api/lunch/", nil, "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "null", recorder.Body.String())
	})

	lunch := func(offsetDays int, salads string) models.BusinessLunch {
		return models.BusinessLunch{
			Date:           models.DateOf(now.AddDate(0, 0, offsetDays)),
			Salads:         salads,
			Soups:          "Борщ",
			HotDishes:      "Котлета",
			Garnishes:      "Пюре",
			Price3Course:   models.DefaultPrice3Course,
			PriceSaladSoup: models.DefaultPriceSaladSoup,
			PriceSaladHot:  models.DefaultPriceSaladHot,
			PriceSoupHot:   models.DefaultPriceSoupHot,
		}
	}

	past := lunch(-2, "past")
	future := lunch(1, "future")
	require.NoError(t, env.db.Create(&past).Error)
	require.NoError(t, env.db.Create(&future).Error)

	t.Run("Without today the latest date wins, even in the future", func(t *testing.T) {
		recorder := env.do(http.MethodGet, "/api/lunch/", nil, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp handlers.LunchResponse
		decode(t, recorder, &resp)
		assert.Equal(t, "future", resp.Salads)
		assert.Equal(t, models.FormatDate(future.Date), resp.Date)
		assert.Equal(t, today, resp.DebugServerDate)
		assert.Equal(t, 370, resp.Price3Course)
	})

	t.Run("Today's lunch is preferred", func(t *testing.T) {
		current := lunch(0, "today")
		require.NoError(t, env.db.Create(&current).Error)

		recorder := env.do(http.MethodGet, "/api/lunch/", nil, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp handlers.LunchResponse
		decode(t, recorder, &resp)
		assert.Equal(t, "today", resp.Salads)
		assert.Equal(t, today, resp.Date)
	})
}

func TestGetBanquetMenusHandler(t *testing.T) {
	env := setupTestRouter(t)

	menus := []models.BanquetMenu{
		{Title: "Второе", CoverImage: "b.jpg", IsActive: true, Order: 2},
		{Title: "Первое", CoverImage: "a.jpg", IsActive: true, Order: 1, Category: models.BanquetChildren,
			PricePerPerson: decimal.NewNullDecimal(decimal.NewFromInt(1500)),
			Items:          datatypes.JSONSlice[models.BanquetGroup]{{Category: "Закуски", Items: []string{"Канапе"}}}},
		{Title: "Скрытое", CoverImage: "c.jpg", IsActive: false, Order: 0},
	}
	for i := range menus {
		require.NoError(t, menus[i].Validate())
		require.NoError(t, env.db.Create(&menus[i]).Error)
	}

	recorder := env.do(http.MethodGet, "/api/banquet-menus/", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp []models.BanquetMenu
	decode(t, recorder, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "Первое", resp[0].Title)
	assert.Equal(t, "Второе", resp[1].Title)
	assert.Equal(t, models.BanquetChildren, resp[0].Category)
	assert.Equal(t, "1500", resp[0].PricePerPerson.Decimal.String())
	assert.Equal(t, []string{"Канапе"}, resp[0].Items[0].Items)
	assert.False(t, resp[1].PricePerPerson.Valid)
	assert.Equal(t, models.LayoutList, resp[1].LayoutType)
}

func TestGetStatusHandler(t *testing.T) {
	env := setupTestRouter(t)

	recorder := env.do(http.MethodGet, "/api/status/", nil, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"running"`)

	health := env.do(http.MethodGet, "/health", nil, "")
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/auth"
)

// RegisterRoutes mounts the API on r. sso may be nil, which leaves the OIDC
// endpoints answering 404.
func RegisterRoutes(r gin.IRouter, sso *auth.OIDC) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.GET("/status/", GetStatus)
		api.GET("/menu/", GetMenu)
		api.GET("/lunch/", GetLunch)
		api.GET("/banquet-menus/", GetBanquetMenus)
		api.POST("/orders/", CreateOrder)
		api.POST("/reservations/", CreateReservation)
		api.POST("/paykeeper/callback/", PayKeeperCallback)

		api.POST("/auth/register/", auth.Register)
		api.POST("/auth/login/", auth.Login)
		api.POST("/auth/logout/", auth.Logout)
		api.GET("/auth/user/", auth.CurrentUser)
		if sso != nil {
			api.GET("/auth/oidc/login", sso.Login)
			api.GET("/auth/oidc/callback", sso.Callback)
		}
	}

	profile := api.Group("/profile", auth.RequireAuth())
	{
		profile.GET("/data/", GetProfileData)
		profile.POST("/address/add/", AddAddress)
		profile.DELETE("/address/:id/delete/", DeleteAddress)
		profile.POST("/address/:id/default/", SetDefaultAddress)
	}

	staff := api.Group("/admin", auth.RequireStaff())
	{
		staff.GET("/check-new/", CheckNew)
		staff.GET("/dashboard/", Dashboard)
		staff.GET("/reservations/", ListReservations)
		staff.PATCH("/orders/:id/status", UpdateOrderStatus)
		staff.POST("/categories", CreateCategory)
		staff.DELETE("/categories/:id", DeleteCategory)
		staff.POST("/products", CreateProduct)
		staff.POST("/lunches", CreateLunch)
	}
}

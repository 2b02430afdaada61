package routes

import (
	"github.com/gin-gonic/gin"

	userControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/user"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
)

// SetupUserRoutes registers all "/api/user/*" endpoints. Requires JWT.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	userGroup := r.Group("/api/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("/profile", userControllers.GetProfile(deps.DB))
		userGroup.PUT("/profile", userControllers.UpdateProfile(deps.DB))

		userGroup.POST("/change-password/init", userControllers.InitiateChangePassword(deps.DB, deps.Notifier))
		userGroup.POST("/change-password/verify", userControllers.VerifyChangePassword(deps.DB))

		userGroup.DELETE("/delete-account", userControllers.DeleteAccount(deps.DB))
	}
}

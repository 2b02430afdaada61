package routes

import (
	"github.com/gin-gonic/gin"

	addressControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/address"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
)

// SetupAddressRoutes registers all "/api/addresses/*" endpoints. Requires JWT.
func SetupAddressRoutes(r *gin.Engine, deps Deps) {
	addressGroup := r.Group("/api/addresses")
	addressGroup.Use(middleware.ValidateToken)
	{
		addressGroup.GET("/", addressControllers.GetAddresses(deps.DB))
		addressGroup.POST("/", addressControllers.AddAddress(deps.DB))
		addressGroup.PUT("/:id", addressControllers.UpdateAddress(deps.DB))
		addressGroup.DELETE("/:id", addressControllers.DeleteAddress(deps.DB))
		addressGroup.PATCH("/:id/default", addressControllers.SetDefaultAddress(deps.DB))
	}
}

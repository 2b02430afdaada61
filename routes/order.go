package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/order"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
)

// SetupOrderRoutes registers "/api/orders/*". Customer operations are JWT
// protected; the fulfillment update comes from the logistics side and is
// gated by the shared API key instead.
func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/api/orders")
	{
		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		// Fulfillment events: shipped / delivered
		orders.PUT("/:id/fulfillment",
			middleware.ValidateFulfillmentKey,
			orderControllers.UpdateFulfillmentStatus(deps.DB),
		)

		authed := orders.Group("")
		authed.Use(middleware.ValidateToken)
		{
			authed.GET("/", orderControllers.GetMyOrders(deps.DB))
			authed.GET("/:id", orderControllers.GetOrderByID(deps.DB))
			authed.PATCH("/:id/cancel", orderControllers.CancelOrder(deps.DB))
			authed.PATCH("/:id/return", orderControllers.ReturnOrder(deps.DB))
		}
	}
}

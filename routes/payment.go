package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/payment"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
)

// SetupPaymentRoutes registers all "/api/payment/*" endpoints. Requires JWT.
func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	payment := r.Group("/api/payment")
	payment.Use(middleware.ValidateToken)
	{
		payment.POST("/create-order", paymentControllers.CreatePaymentOrder(deps.Gateway))
		payment.POST("/verify", paymentControllers.VerifyPayment(deps.DB, deps.RazorpaySecret))
	}
}

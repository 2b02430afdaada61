package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sunny-kumar-mit/ShopKart-Backend/auth"
	authControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/auth"
)

// SetupAuthRoutes registers all "/api/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authControllers.Register(deps.DB, deps.Notifier))
		authGroup.POST("/verify-otp", authControllers.VerifyOTP(deps.DB))
		authGroup.POST("/login", authControllers.Login(deps.DB, deps.Notifier))
		authGroup.POST("/forgot-password", authControllers.ForgotPassword(deps.DB, deps.Notifier))
		authGroup.POST("/reset-password", authControllers.ResetPassword(deps.DB))

		// Google login: verification + account linking, ends in a redirect
		// to the frontend callback carrying the session token.
		authGroup.POST("/google", auth.GoogleLoginHandler(deps.DB, deps.GoogleVerifier))
		authGroup.GET("/google/callback", auth.GoogleLoginHandler(deps.DB, deps.GoogleVerifier))
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/auth"
	chatControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/chat"
	paymentControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/payment"
	"github.com/sunny-kumar-mit/ShopKart-Backend/utils"
)

// Deps carries the collaborators constructed once in main and injected into
// the handlers that need them.
type Deps struct {
	DB             *gorm.DB
	Notifier       utils.Notifier
	GoogleVerifier auth.TokenVerifier
	Gateway        paymentControllers.Gateway
	RazorpaySecret string
	Chat           chatControllers.CompletionClient
}

var startedAt = time.Now()

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, deps)

	// JWT-protected groups
	SetupUserRoutes(r, deps)
	SetupAddressRoutes(r, deps)
	SetupOrderRoutes(r, deps)
	SetupPaymentRoutes(r, deps)

	// Chat assistant
	SetupChatRoutes(r, deps)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(startedAt).Seconds()})
	})
}

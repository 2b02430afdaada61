package routes

import (
	"github.com/gin-gonic/gin"

	chatControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/chat"
)

// SetupChatRoutes registers the assistant endpoint.
func SetupChatRoutes(r *gin.Engine, deps Deps) {
	r.POST("/api/chat", chatControllers.HandleChat(deps.Chat))
}

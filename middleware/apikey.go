package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ValidateFulfillmentKey protects the fulfillment status endpoint. Shipped and
// Delivered transitions come from the logistics side, not from customers, so
// the caller proves itself with the shared X-API-KEY instead of a user token.
func ValidateFulfillmentKey(c *gin.Context) {
	apiKey := c.GetHeader("X-API-KEY")
	if apiKey == "" || apiKey != os.Getenv("FULFILLMENT_API_KEY") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid or missing API key"})
		c.Abort()
		return
	}
	c.Next()
}

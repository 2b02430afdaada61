package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sunny-kumar-mit/ShopKart-Backend/auth"
)

// ValidateToken gates a route group on a valid session token. Accepts either
// "Authorization: Bearer <token>" or the legacy "x-auth-token" header and
// stores user_id and role on the context.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		tokenString = c.GetHeader("x-auth-token")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "No token, authorization denied"})
		c.Abort()
		return
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Session expired. Please login again."})
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Token is not valid"})
		}
		c.Abort()
		return
	}

	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
	c.Next()
}

// UserID returns the authenticated user id set by ValidateToken.
func UserID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}

package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

// findOwned loads an order with its items and enforces ownership.
func findOwned(db *gorm.DB, orderID, userID string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.Forbidden("User not authorized")
	}
	return &order, nil
}

// GET /api/orders
// Returns the caller's orders, newest first.
func GetMyOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		err := db.Preload("Items").
			Where("user_id = ?", middleware.UserID(c)).
			Order("created_at desc").
			Find(&orders).Error
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:id
func GetOrderByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := findOwned(db, c.Param("id"), middleware.UserID(c))
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PATCH /api/orders/:id/cancel
// Allowed from Processing and Shipped only. A completed payment flips to
// Refunded in the same write; a pending one stays pending.
func CancelOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := findOwned(db, c.Param("id"), middleware.UserID(c))
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
			apperrors.Respond(c, apperrors.InvalidTransition("Order cannot be cancelled in its current state"))
			return
		}

		now := time.Now()
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &now
		if order.PaymentStatus == models.PaymentStatusCompleted {
			order.PaymentStatus = models.PaymentStatusRefunded
		}

		if err := db.Save(order).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		BroadcastOrderUpdate(*order)
		c.JSON(http.StatusOK, order)
	}
}

// PATCH /api/orders/:id/return
// Only delivered orders can come back; a return always implies a refund.
func ReturnOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := findOwned(db, c.Param("id"), middleware.UserID(c))
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		if order.Status != models.OrderStatusDelivered {
			apperrors.Respond(c, apperrors.InvalidTransition("Only delivered orders can be returned"))
			return
		}

		now := time.Now()
		order.Status = models.OrderStatusReturned
		order.ReturnedAt = &now
		order.PaymentStatus = models.PaymentStatusRefunded

		if err := db.Save(order).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		BroadcastOrderUpdate(*order)
		c.JSON(http.StatusOK, order)
	}
}

type fulfillmentRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PUT /api/orders/:id/fulfillment (X-API-KEY gated)
// Drives the Shipped and Delivered edges from the logistics side, through the
// same transition table the customer-facing operations use.
func UpdateFulfillmentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fulfillmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}
		if req.Status != models.OrderStatusShipped && req.Status != models.OrderStatusDelivered {
			apperrors.Respond(c, apperrors.BadRequest("status must be Shipped or Delivered"))
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("id")).Error; err != nil {
			apperrors.Respond(c, apperrors.NotFound("Order not found"))
			return
		}

		if !order.Status.CanTransitionTo(req.Status) {
			apperrors.Respond(c, apperrors.InvalidTransition("Illegal status transition"))
			return
		}

		now := time.Now()
		order.Status = req.Status
		switch req.Status {
		case models.OrderStatusShipped:
			order.ShippedAt = &now
		case models.OrderStatusDelivered:
			order.DeliveredAt = &now
		}

		if err := db.Save(&order).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		BroadcastOrderUpdate(order)
		c.JSON(http.StatusOK, order)
	}
}

package paymentControllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	orderControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/order"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

// Gateway creates provider-side payment orders ("intents"). The returned map
// is the gateway's order object, passed through to the client verbatim.
type Gateway interface {
	CreateOrder(amountMinorUnits int64, currency, receipt string) (map[string]interface{}, error)
}

// RazorpayClient talks to the Razorpay Orders API.
type RazorpayClient struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewRazorpayClientFromEnv reads RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET.
func NewRazorpayClientFromEnv() *RazorpayClient {
	return &RazorpayClient{
		KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		BaseURL:   "https://api.razorpay.com/v1",
	}
}

func (r *RazorpayClient) CreateOrder(amountMinorUnits int64, currency, receipt string) (map[string]interface{}, error) {
	if r.KeyID == "" || r.KeySecret == "" {
		return nil, fmt.Errorf("razorpay configuration missing")
	}

	payload := map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receipt,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, r.BaseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(r.KeyID, r.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	client := r.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Razorpay: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay API error (%d): %s", resp.StatusCode, string(body))
	}

	var order map[string]interface{}
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse Razorpay response: %w", err)
	}
	return order, nil
}

// VerifySignature recomputes the gateway signature over orderID|paymentID and
// compares the lowercase-hex digests. The concatenation order and encoding
// must stay byte-for-byte compatible with the gateway's reference check.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return expected == signature
}

type createOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // major units (INR)
}

// POST /api/payment/create-order
// Creates the provider-side order for amount*100 paise and returns it as-is.
func CreatePaymentOrder(gateway Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		receipt := fmt.Sprintf("receipt_order_%d", time.Now().UnixMilli())
		// Round, don't truncate: 1099.10*100 is 109909.99... in float64.
		paise := int64(math.Round(req.Amount * 100))
		order, err := gateway.CreateOrder(paise, "INR", receipt)
		if err != nil {
			apperrors.Respond(c, apperrors.Wrap(apperrors.KindGatewayError, "Payment gateway error", err))
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

type orderData struct {
	Items           []models.OrderItem     `json:"items" binding:"required,min=1"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	TotalAmount     float64                `json:"totalAmount" binding:"required,gt=0"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string    `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string    `json:"razorpay_signature" binding:"required"`
	OrderData         orderData `json:"orderData" binding:"required"`
}

// POST /api/payment/verify
// The sole gate for committing a paid order: the signature must check out
// before anything is written. On success the order is created atomically as
// {Processing, Completed} with the gateway ids attached.
func VerifyPayment(db *gorm.DB, keySecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		if !VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, keySecret) {
			apperrors.Respond(c, apperrors.SignatureInvalid("Payment signature verification failed"))
			return
		}

		order := models.Order{
			UserID:            middleware.UserID(c),
			Items:             req.OrderData.Items,
			ShippingAddress:   req.OrderData.ShippingAddress,
			TotalAmount:       req.OrderData.TotalAmount,
			PaymentMethod:     "UPI",
			PaymentStatus:     models.PaymentStatusCompleted,
			Status:            models.OrderStatusProcessing,
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			RazorpaySignature: req.RazorpaySignature,
			PlacedAt:          time.Now(),
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&order).Error
		}); err != nil {
			apperrors.Respond(c, err)
			return
		}

		orderControllers.BroadcastOrderUpdate(order)
		c.JSON(http.StatusOK, gin.H{"msg": "success", "orderId": order.ID})
	}
}

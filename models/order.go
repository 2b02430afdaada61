package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing" // Paid/placed, awaiting fulfillment
	OrderStatusShipped    OrderStatus = "Shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "Delivered"  // Customer received the items
	OrderStatusCancelled  OrderStatus = "Cancelled"  // Terminal
	OrderStatusReturned   OrderStatus = "Returned"   // Terminal

	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// orderTransitions is the single source of truth for legal status edges.
// Cancelled and Returned have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusReturned},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status changes are allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// ShippingAddress is a point-in-time copy of the chosen address, embedded in
// the order so later address edits never rewrite order history.
type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	AddressType  string `json:"address_type,omitempty"`
}

type Order struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	TotalAmount     float64         `gorm:"not null" json:"total_amount"`

	PaymentMethod string        `gorm:"type:VARCHAR(20)" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'Pending'" json:"payment_status"`
	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'Processing'" json:"order_status"`

	// Gateway correlation ids, set only by the payment verifier.
	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"-"`

	// Milestone timestamps, write-once per field.
	PlacedAt    time.Time  `json:"placed_at"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a purchase-time snapshot, not a live product reference.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   string  `gorm:"index" json:"-"`
	ProductID string  `gorm:"not null" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null" json:"price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}

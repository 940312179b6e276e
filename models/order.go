package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed}

const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

var OrderStatuses = []string{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func ValidPaymentStatus(s string) bool { return slices.Contains(PaymentStatuses, s) }
func ValidOrderStatus(s string) bool   { return slices.Contains(OrderStatuses, s) }

// OrderLine is the price-locked snapshot of a cart item.
type OrderLine struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User            primitive.ObjectID `json:"user" bson:"user"`
	Products        []OrderLine        `json:"products" bson:"products"`
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`
	ShippingAddress string             `json:"shippingAddress" bson:"shippingAddress"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus     string             `json:"orderStatus" bson:"orderStatus"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ResolvedOrderLine pairs the snapshot with the current product record.
// Product is nil when the product no longer exists at all.
type ResolvedOrderLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
}

type OrderView struct {
	ID              primitive.ObjectID  `json:"_id"`
	User            primitive.ObjectID  `json:"user"`
	Products        []ResolvedOrderLine `json:"products"`
	TotalAmount     float64             `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress"`
	PaymentStatus   string              `json:"paymentStatus"`
	OrderStatus     string              `json:"orderStatus"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// StatusUpdate holds the optional fields of an admin status change.
type StatusUpdate struct {
	OrderStatus   *string `json:"orderStatus,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	TotalAmount   float64   `json:"totalAmount"`
	OrderStatus   string    `json:"orderStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	At            time.Time `json:"at"`
}

func NewOrderEvent(kind string, o *Order) OrderEvent {
	return OrderEvent{
		Type:          kind,
		OrderID:       o.ID.Hex(),
		UserID:        o.User.Hex(),
		TotalAmount:   o.TotalAmount,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		At:            time.Now().UTC(),
	}
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Transitions are unrestricted: an administrator may move an
// order from any status to any other.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a member of the order status enum.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line item snapshot copied at order time. It is owned by the
// order and never updated when the referenced product changes later.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// OrderCustomer is the customer contact snapshot embedded in an order.
type OrderCustomer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
}

// Order is the persisted order document. Subtotal is the client-supplied
// pre-discount amount; Discount and Total are computed at placement time and
// satisfy total = max(0, subtotal - discount).
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Customer  OrderCustomer      `bson:"customer" json:"customer"`
	Items     []OrderItem        `bson:"items" json:"items"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
	Discount  float64            `bson:"discount" json:"discount"`
	Total     float64            `bson:"total" json:"total"`
	OfferCode string             `bson:"offer_code,omitempty" json:"offer_code,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Callback request statuses.
const (
	CallbackStatusPending   = "pending"
	CallbackStatusContacted = "contacted"
	CallbackStatusCompleted = "completed"
)

// ValidCallbackStatus reports whether s is a member of the callback status enum.
func ValidCallbackStatus(s string) bool {
	return s == CallbackStatusPending || s == CallbackStatusContacted || s == CallbackStatusCompleted
}

// CallbackRequest records a customer's request to be called back by the
// pharmacy, optionally about a specific medicine.
type CallbackRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Medicine  string             `bson:"medicine,omitempty" json:"medicine,omitempty"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer kinds.
const (
	OfferTypePercentage = "percentage"
	OfferTypeFixed      = "fixed"
)

// Offer is a promotional code. Codes are stored upper case and uniquely
// identify at most one offer.
type Offer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Type        string             `bson:"type" json:"type"`
	Value       float64            `bson:"value" json:"value"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

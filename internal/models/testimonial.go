package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Testimonial is a customer review. New submissions start unapproved and are
// hidden from the public listing until an administrator approves them.
type Testimonial struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	Review       string             `bson:"review" json:"review"`
	Rating       int                `bson:"rating" json:"rating"`
	Approved     bool               `bson:"approved" json:"approved"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

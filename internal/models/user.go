package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Admins and staff carry a username; customers register with a
// phone number and log in with it.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleHelper   = "helper"
)

// ValidStaffRole reports whether r may be assigned through the admin user
// management endpoints.
func ValidStaffRole(r string) bool {
	return r == RoleAdmin || r == RoleDriver || r == RoleHelper
}

// User is a unified account document covering admins, staff and customers.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"password" json:"-"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents the application user account, including the
// fulfillment profile collected before checkout is allowed.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Company      string             `bson:"company,omitempty" json:"company,omitempty"`
	Position     string             `bson:"position,omitempty" json:"position,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MissingProfileFields lists the required fulfillment fields that are
// still empty. Checkout is gated on this being empty.
func (u User) MissingProfileFields() []string {
	missing := []string{}
	if u.Phone == "" {
		missing = append(missing, "phone")
	}
	if u.Company == "" {
		missing = append(missing, "company")
	}
	if u.Position == "" {
		missing = append(missing, "position")
	}
	if u.Address == "" {
		missing = append(missing, "address")
	}
	return missing
}

// ProfileComplete reports whether the user may proceed to checkout.
func (u User) ProfileComplete() bool {
	return len(u.MissingProfileFields()) == 0
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non-binary"
)

// Valid reports whether g is one of the supported genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary:
		return true
	}
	return false
}

// Address is the postal address collected after signup.
type Address struct {
	State      string `bson:"state,omitempty"       json:"state,omitempty"`
	City       string `bson:"city,omitempty"        json:"city,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
}

// IsFilled reports whether every address field is set.
func (a Address) IsFilled() bool {
	return a.State != "" && a.City != "" && a.PostalCode != ""
}

// User represents a user account in the identity system.
type User struct {
	ID                bson.ObjectID `bson:"_id,omitempty"         json:"id"`
	Name              string        `bson:"name"                  json:"name"`
	Email             string        `bson:"email"                 json:"email"`
	PasswordHash      string        `bson:"password_hash"         json:"-"`
	Gender            Gender        `bson:"gender"                json:"gender"`
	Avatar            string        `bson:"avatar"                json:"avatar"`
	Address           Address       `bson:"address"               json:"address"`
	IsAddressComplete bool          `bson:"is_address_complete"   json:"isAddressComplete"`
	LastLoginAt       *time.Time    `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time     `bson:"created_at"            json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updated_at"            json:"updatedAt"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OTPRedemption marks a challenge token as consumed. Documents expire with the token.
type OTPRedemption struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Signature string        `bson:"signature"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}

package model

import "time"

// SlotLock is the advisory lock document serializing check-then-commit for
// one (turf, date) pair. Its _id is the lock key, so a racing insert fails
// with a duplicate key error. ExpiresAt backs a TTL index that reaps locks
// orphaned by a crashed process.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

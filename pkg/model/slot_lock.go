package model

import "time"

// SlotLock is an advisory lock keyed by (tenant, staff, bucket start), one
// per granularity bucket the booked range touches. It keeps two concurrent
// booking attempts for overlapping ranges from racing through the overlap
// check before either commits. Locks expire via a TTL index so a crashed
// request cannot wedge a slot.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

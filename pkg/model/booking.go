package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// CanTransitionTo encodes the booking lifecycle: PENDING -> CONFIRMED ->
// COMPLETED, with cancellation possible from PENDING or CONFIRMED. COMPLETED
// and CANCELLED are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

// OccupiesSlot reports whether a booking in this status blocks its time range
// for overlap purposes. Completed bookings keep occupying their original slot;
// cancelled ones free it.
func (s BookingStatus) OccupiesSlot() bool {
	return s == BookingConfirmed || s == BookingCompleted
}

type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID      string        `json:"tenant_id" bson:"tenant_id" validate:"required"`
	ServiceID     string        `json:"service_id" bson:"service_id" validate:"required"`
	StaffID       string        `json:"staff_id" bson:"staff_id" validate:"required"`
	CustomerName  string        `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string        `json:"customer_email" bson:"customer_email" validate:"omitempty,email"`
	StartTime     time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime       time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status        BookingStatus `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`

	// Snapshot of the service at booking time. A later price or name change
	// must not rewrite reported history.
	ServiceName string `json:"service_name" bson:"service_name"`
	Price       Money  `json:"price" bson:"price"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

// BookingRequest is the inbound shape of a booking attempt. StaffID empty
// means "any qualified staff member"; the engine resolves it.
type BookingRequest struct {
	TenantID      string    `json:"tenant_id" validate:"required"`
	ServiceID     string    `json:"service_id" validate:"required"`
	StaffID       string    `json:"staff_id" validate:"omitempty"`
	CustomerName  string    `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	StartTime     time.Time `json:"start_time" validate:"required"`
}

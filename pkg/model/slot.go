package model

// Slot is a candidate bookable window for one staff member performing one
// service. Slots are computed by the availability calculator and handed to
// callers; they are never persisted.
type Slot struct {
	TimeRange `bson:",inline"`
	StaffID   string `json:"staff_id"`
	ServiceID string `json:"service_id"`
}

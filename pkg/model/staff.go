package model

import "time"

// WorkingWindow is one open interval of a staff member's day, in the tenant's
// local time, "HH:MM" 24h format.
type WorkingWindow struct {
	Start string `json:"start" bson:"start" validate:"required,hhmm"`
	End   string `json:"end" bson:"end" validate:"required,hhmm"`
}

// Staff working hours are keyed by weekday name ("Monday".."Sunday"); a
// missing day means the staff member is off.
type Staff struct {
	ID           string                     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID     string                     `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Name         string                     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Role         string                     `json:"role" bson:"role" validate:"omitempty,max=50"`
	Specialties  []string                   `json:"specialties" bson:"specialties" validate:"omitempty,dive,required"`
	WorkingHours map[string][]WorkingWindow `json:"working_hours" bson:"working_hours" validate:"omitempty"`
	// Staff referenced by bookings are never hard-deleted; they are
	// deactivated and drop out of availability instead.
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// WindowsFor returns the open windows for a weekday.
func (s *Staff) WindowsFor(day time.Weekday) []WorkingWindow {
	return s.WorkingHours[day.String()]
}

// Qualified reports whether the staff member carries the specialty a service
// category requires. An empty category means any staff qualifies.
func (s *Staff) Qualified(category string) bool {
	if category == "" {
		return true
	}
	for _, sp := range s.Specialties {
		if sp == category {
			return true
		}
	}
	return false
}

type StaffUpdate struct {
	Name         string                      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Role         string                      `json:"role,omitempty" validate:"omitempty,max=50"`
	Specialties  *[]string                   `json:"specialties,omitempty" validate:"omitempty,dive,required"`
	WorkingHours *map[string][]WorkingWindow `json:"working_hours,omitempty"`
	Active       *bool                       `json:"active,omitempty"`
}

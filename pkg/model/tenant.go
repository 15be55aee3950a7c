package model

import "time"

// Tenant is one salon account, the isolation boundary for all data. Plan and
// Modules are read fresh on every entitlement check; a plan change must take
// effect on the next request, never a cached one.
type Tenant struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Plan      string    `json:"plan" bson:"plan" validate:"required"`
	Modules   []string  `json:"modules" bson:"modules"`
	TimeZone  string    `json:"time_zone" bson:"time_zone" validate:"omitempty,timezone"`
	Currency  string    `json:"currency" bson:"currency" validate:"omitempty,iso4217"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HasModule is plain set membership over the tenant's enabled modules.
func (t *Tenant) HasModule(name string) bool {
	for _, m := range t.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// Location resolves the tenant's IANA timezone, falling back to UTC when the
// field is empty or unparsable.
func (t *Tenant) Location() *time.Location {
	if t.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

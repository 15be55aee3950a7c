package model

import "time"

// Service is a bookable salon offering. Duration drives slot length; Category
// is matched against staff specialties. Bookings snapshot name and price at
// creation time, so editing or deleting a service never rewrites history.
type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID    string    `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Price       Money     `json:"price" bson:"price"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Category    string    `json:"category" bson:"category" validate:"omitempty,max=50"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

type ServiceUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *Money `json:"price,omitempty"`
	DurationMin *int   `json:"duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=50"`
}

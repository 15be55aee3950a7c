package validator

import (
	"errors"
	"testing"
	"time"

	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		TenantID:      "tenant-1",
		ServiceID:     "service-1",
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		StartTime:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateRequest(validRequest()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRequest_EmptyStaffAllowed(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.StaffID = ""
	if err := v.ValidateRequest(req); err != nil {
		t.Errorf("empty staff means any staff, got error: %v", err)
	}
}

func TestValidateRequest_MissingFields(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.BookingRequest)
		field  string
	}{
		{"missing tenant", func(r *model.BookingRequest) { r.TenantID = "" }, "TenantID"},
		{"missing service", func(r *model.BookingRequest) { r.ServiceID = "" }, "ServiceID"},
		{"missing customer name", func(r *model.BookingRequest) { r.CustomerName = "" }, "CustomerName"},
		{"short customer name", func(r *model.BookingRequest) { r.CustomerName = "M" }, "CustomerName"},
		{"zero start time", func(r *model.BookingRequest) { r.StartTime = time.Time{} }, "StartTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, ve := range verrs {
				if ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.field, verrs)
			}
		})
	}
}

func TestValidateRequest_BadEmail(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.CustomerEmail = "not-an-email"
	if err := v.ValidateRequest(req); err == nil {
		t.Error("expected error for malformed email")
	}

	req.CustomerEmail = ""
	if err := v.ValidateRequest(req); err != nil {
		t.Errorf("email is optional, got error: %v", err)
	}
}

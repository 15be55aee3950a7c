package service

import (
	"context"
	"errors"
	"time"

	"aurabook/internal/availability"
	bookingerrors "aurabook/internal/bookings/errors"
	"aurabook/internal/bookings/repository"
	"aurabook/internal/bookings/validator"
	catalogerrors "aurabook/internal/catalog/errors"
	catalogrepo "aurabook/internal/catalog/repository"
	"aurabook/internal/entitlements"
	"aurabook/pkg/clock"
	"aurabook/pkg/config"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/events"
	"aurabook/pkg/model"
	"aurabook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	// ListAvailableSlots computes the bookable slots for a service on the
	// calendar day containing day, in the tenant's timezone. staffID empty
	// means every qualified active staff member.
	ListAvailableSlots(ctx context.Context, tenantID, serviceID, staffID string, day time.Time) ([]model.Slot, error)

	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error

	DistinctCustomerCount(ctx context.Context, tenantID string) (int64, error)
}

type bookingService struct {
	bookings   repository.BookingRepository
	locks      repository.SlotLockRepository
	staff      catalogrepo.StaffRepository
	services   catalogrepo.ServiceRepository
	gate       *entitlements.Gate
	calculator *availability.Calculator
	validator  *validator.BookingValidator
	publisher  events.Publisher
	clock      clock.Clock
	cfg        *config.Config
}

func NewBookingService(
	bookings repository.BookingRepository,
	locks repository.SlotLockRepository,
	staff catalogrepo.StaffRepository,
	services catalogrepo.ServiceRepository,
	gate *entitlements.Gate,
	calculator *availability.Calculator,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookings:   bookings,
		locks:      locks,
		staff:      staff,
		services:   services,
		gate:       gate,
		calculator: calculator,
		validator:  validator,
		publisher:  publisher,
		clock:      clk,
		cfg:        cfg,
	}
}

func (s *bookingService) ListAvailableSlots(ctx context.Context, tenantID, serviceID, staffID string, day time.Time) ([]model.Slot, error) {
	tenant, err := s.gate.Tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	loc := tenant.Location()

	svc, err := s.loadService(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := clock.DayBounds(day, loc)

	if staffID != "" {
		staff, err := s.loadStaff(ctx, tenantID, staffID)
		if err != nil {
			return nil, err
		}
		if !staff.Qualified(svc.Category) {
			return nil, apperrors.StaffUnqualified(staff.ID, svc.Category)
		}

		existing, err := s.bookings.FindOccupying(ctx, tenantID, staffID, dayStart, dayEnd)
		if err != nil {
			return nil, apperrors.Storage("Failed to load bookings", err)
		}
		return s.calculator.SlotsForStaff(staff, svc, day, loc, existing)
	}

	roster, err := s.staff.FindByTenant(ctx, tenantID, true)
	if err != nil {
		return nil, apperrors.Storage("Failed to load staff", err)
	}

	existing, err := s.bookings.FindOccupying(ctx, tenantID, "", dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Storage("Failed to load bookings", err)
	}
	byStaff := make(map[string][]*model.Booking, len(roster))
	for _, b := range existing {
		byStaff[b.StaffID] = append(byStaff[b.StaffID], b)
	}

	return s.calculator.SlotsForAny(roster, svc, day, loc, byStaff)
}

// Create runs the full booking pipeline: validate, check the monthly quota,
// resolve the staff member, then take the slot lock and re-check overlap
// inside a transaction before inserting. The booking lands as CONFIRMED.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	req.CustomerName = sanitizer.NormalizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.NormalizeEmail(req.CustomerEmail)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "tenant_id", req.TenantID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	if req.StartTime.Before(s.clock.Now()) {
		return nil, apperrors.InvalidInput("Cannot book a slot in the past")
	}

	tenant, err := s.gate.Tenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	loc := tenant.Location()

	monthStart, monthEnd := clock.MonthBounds(req.StartTime, loc)
	monthly, err := s.bookings.CountByTenantInRange(ctx, req.TenantID, monthStart, monthEnd)
	if err != nil {
		return nil, apperrors.Storage("Failed to count monthly bookings", err)
	}
	if err := s.gate.RequireBook(ctx, req.TenantID, monthly); err != nil {
		return nil, err
	}

	svc, err := s.loadService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	requested := model.TimeRange{Start: req.StartTime, End: req.StartTime.Add(svc.Duration())}

	staffID, err := s.resolveStaff(ctx, req, svc, requested, loc)
	if err != nil {
		return nil, err
	}

	// The lock covers every granularity bucket of the requested range, so a
	// concurrent attempt with a different start time but an overlapping
	// range still contends here instead of slipping past the re-check.
	locks, err := s.locks.Acquire(ctx, req.TenantID, staffID, requested)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrLockTaken) {
			return nil, apperrors.SlotUnavailable("Another booking for this slot is in progress")
		}
		return nil, apperrors.Storage("Failed to acquire slot lock", err)
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), locks); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot locks, TTL will reap them", "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		TenantID:      req.TenantID,
		ServiceID:     svc.ID,
		StaffID:       staffID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		StartTime:     requested.Start,
		EndTime:       requested.End,
		Status:        model.BookingConfirmed,
		ServiceName:   svc.Name,
		Price:         svc.Price,
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-check under the transaction: a competing booking may have
		// committed between the availability read and the lock.
		conflicts, err := s.bookings.FindOccupying(sessCtx, req.TenantID, staffID, requested.Start, requested.End)
		if err != nil {
			return apperrors.Storage("Failed to re-check overlap", err)
		}
		if len(conflicts) > 0 {
			return apperrors.SlotUnavailable("Slot was taken by a concurrent booking")
		}
		return s.bookings.Create(sessCtx, booking)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Storage("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID, "tenant_id", booking.TenantID, "staff_id", staffID,
		"service_id", svc.ID, "start_time", booking.StartTime)

	s.publish(ctx, events.BookingConfirmed, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingError(err, id)
	}
	return booking, nil
}

func (s *bookingService) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if tenantID == "" {
		return nil, 0, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, total, err := s.bookings.FindByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Storage("Failed to list bookings", err)
	}
	return bookings, total, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.BookingCancelled, events.BookingCancelled)
}

func (s *bookingService) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.BookingCompleted, events.BookingCompleted)
}

func (s *bookingService) DistinctCustomerCount(ctx context.Context, tenantID string) (int64, error) {
	if tenantID == "" {
		return 0, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	count, err := s.bookings.DistinctCustomerCount(ctx, tenantID)
	if err != nil {
		return 0, apperrors.Storage("Failed to count customers", err)
	}
	return count, nil
}

// transition applies the status machine. The repository's compare-and-set
// filter makes the check race-safe: the update only matches the status we
// validated against.
func (s *bookingService) transition(ctx context.Context, id string, next model.BookingStatus, eventType string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return mapBookingError(err, id)
	}
	if !booking.Status.CanTransitionTo(next) {
		return apperrors.InvalidState(
			"Booking in status " + string(booking.Status) + " cannot move to " + string(next))
	}

	if err := s.bookings.UpdateStatus(ctx, id, booking.Status, next); err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return apperrors.InvalidState("Booking status changed concurrently")
		}
		return mapBookingError(err, id)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "from", booking.Status, "to", next)

	booking.Status = next
	s.publish(ctx, eventType, booking)
	return nil
}

// resolveStaff picks the staff member for the request. An explicit staff ID is
// verified against that member's slot set; an empty one takes the first
// qualified member with the requested slot, in deterministic order.
func (s *bookingService) resolveStaff(ctx context.Context, req *model.BookingRequest, svc *model.Service, requested model.TimeRange, loc *time.Location) (string, error) {
	dayStart, dayEnd := clock.DayBounds(req.StartTime, loc)

	if req.StaffID != "" {
		staff, err := s.loadStaff(ctx, req.TenantID, req.StaffID)
		if err != nil {
			return "", err
		}
		if !staff.Active {
			return "", apperrors.InvalidState("Staff member is deactivated")
		}
		if !staff.Qualified(svc.Category) {
			return "", apperrors.StaffUnqualified(staff.ID, svc.Category)
		}

		existing, err := s.bookings.FindOccupying(ctx, req.TenantID, staff.ID, dayStart, dayEnd)
		if err != nil {
			return "", apperrors.Storage("Failed to load bookings", err)
		}
		slots, err := s.calculator.SlotsForStaff(staff, svc, req.StartTime, loc, existing)
		if err != nil {
			return "", apperrors.Storage("Failed to compute availability", err)
		}
		if !availability.HasSlot(slots, staff.ID, requested) {
			return "", apperrors.SlotUnavailable("Requested slot is not available for this staff member")
		}
		return staff.ID, nil
	}

	slots, err := s.ListAvailableSlots(ctx, req.TenantID, svc.ID, "", req.StartTime)
	if err != nil {
		return "", err
	}
	for _, slot := range slots {
		if slot.Start.Equal(requested.Start) && slot.End.Equal(requested.End) {
			return slot.StaffID, nil
		}
	}
	return "", apperrors.SlotUnavailable("No qualified staff member is available for the requested slot")
}

func (s *bookingService) loadService(ctx context.Context, tenantID, serviceID string) (*model.Service, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, mapCatalogLookup(err, "Service", serviceID)
	}
	if svc.TenantID != tenantID {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}
	return svc, nil
}

func (s *bookingService) loadStaff(ctx context.Context, tenantID, staffID string) (*model.Staff, error) {
	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return nil, mapCatalogLookup(err, "Staff", staffID)
	}
	if staff.TenantID != tenantID {
		return nil, apperrors.NotFoundWithID("Staff", staffID)
	}
	return staff, nil
}

// publish is fire-and-forget: event delivery never fails the operation.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := events.New(eventType, booking.TenantID, map[string]any{
		"booking_id": booking.ID,
		"staff_id":   booking.StaffID,
		"service_id": booking.ServiceID,
		"start_time": booking.StartTime,
		"end_time":   booking.EndTime,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func mapBookingError(err error, id string) error {
	if errors.Is(err, bookingerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Storage("Failed to access booking", err)
}

func mapCatalogLookup(err error, resource, id string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, catalogerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	}
	return apperrors.Storage("Failed to load "+resource, err)
}

package service

import (
	"context"
	"testing"
	"time"

	"aurabook/internal/availability"
	bookingerrors "aurabook/internal/bookings/errors"
	"aurabook/internal/bookings/repository"
	"aurabook/internal/bookings/validator"
	"aurabook/internal/entitlements"
	"aurabook/pkg/clock"
	"aurabook/pkg/config"
	dbmongo "aurabook/pkg/db/mongo"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/events"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

// 2026-03-02 is a Monday.
var monday9 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type mockBookingRepository struct {
	createFunc        func(ctx context.Context, b *model.Booking) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	findOccupyingFunc func(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*model.Booking, error)
	countInRangeFunc  func(ctx context.Context, tenantID string, from, to time.Time) (int64, error)
	updateStatusFunc  func(ctx context.Context, id string, from, to model.BookingStatus) error
}

func (m *mockBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	b.ID = "booking-1"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingRepository) FindOccupying(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*model.Booking, error) {
	if m.findOccupyingFunc != nil {
		return m.findOccupyingFunc(ctx, tenantID, staffID, from, to)
	}
	return nil, nil
}

func (m *mockBookingRepository) CountByTenantInRange(ctx context.Context, tenantID string, from, to time.Time) (int64, error) {
	if m.countInRangeFunc != nil {
		return m.countInRangeFunc(ctx, tenantID, from, to)
	}
	return 0, nil
}

func (m *mockBookingRepository) DistinctCustomerCount(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return fn(nil)
}

type mockSlotLockRepository struct {
	acquireFunc func(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error)
	released    []string
}

func (m *mockSlotLockRepository) Acquire(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, tenantID, staffID, rng)
	}
	return []*model.SlotLock{{ID: "lock-1"}}, nil
}

func (m *mockSlotLockRepository) Release(ctx context.Context, locks []*model.SlotLock) error {
	for _, lock := range locks {
		m.released = append(m.released, lock.ID)
	}
	return nil
}

// heldSlotLocks emulates the unique-index insert of the real repository
// across Acquire calls, with all-or-nothing semantics per call.
func heldSlotLocks() (map[string]bool, func(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error)) {
	held := map[string]bool{}
	acquire := func(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error) {
		ids := repository.LockIDs(tenantID, staffID, rng, 30*time.Minute)
		for _, id := range ids {
			if held[id] {
				return nil, bookingerrors.ErrLockTaken
			}
		}
		locks := make([]*model.SlotLock, 0, len(ids))
		for _, id := range ids {
			held[id] = true
			locks = append(locks, &model.SlotLock{ID: id})
		}
		return locks, nil
	}
	return held, acquire
}

type mockStaffRepository struct {
	findByIDFunc     func(ctx context.Context, id string) (*model.Staff, error)
	findByTenantFunc func(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error)
}

func (m *mockStaffRepository) Create(ctx context.Context, s *model.Staff) error { return nil }

func (m *mockStaffRepository) FindByID(ctx context.Context, id string) (*model.Staff, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStaffRepository) FindByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error) {
	if m.findByTenantFunc != nil {
		return m.findByTenantFunc(ctx, tenantID, activeOnly)
	}
	return nil, nil
}

func (m *mockStaffRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockStaffRepository) Update(ctx context.Context, id string, s *model.Staff) error {
	return nil
}

type mockServiceRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, s *model.Service) error { return nil }

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockServiceRepository) FindByTenant(ctx context.Context, tenantID string) ([]*model.Service, error) {
	return nil, nil
}

func (m *mockServiceRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, s *model.Service) error {
	return nil
}

func (m *mockServiceRepository) Delete(ctx context.Context, id string) error { return nil }

type mockTenantRepository struct {
	tenant *model.Tenant
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	return m.tenant, nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		SlotGranularityMin: 30,
		DefaultCurrency:    "EUR",
	}
}

func testStaff() *model.Staff {
	return &model.Staff{
		ID:          "staff-1",
		TenantID:    "tenant-1",
		Name:        "Ana",
		Specialties: []string{"hair"},
		Active:      true,
		WorkingHours: map[string][]model.WorkingWindow{
			"Monday": {{Start: "09:00", End: "12:00"}},
		},
	}
}

func testService() *model.Service {
	return &model.Service{
		ID:          "svc-1",
		TenantID:    "tenant-1",
		Name:        "Cut & Finish",
		Price:       model.NewMoney(3000, "EUR"),
		DurationMin: 45,
		Category:    "hair",
	}
}

func testRequest() *model.BookingRequest {
	return &model.BookingRequest{
		TenantID:     "tenant-1",
		ServiceID:    "svc-1",
		StaffID:      "staff-1",
		CustomerName: "Maria Silva",
		StartTime:    monday9,
	}
}

type fixture struct {
	bookings *mockBookingRepository
	locks    *mockSlotLockRepository
	staff    *mockStaffRepository
	services *mockServiceRepository
	service  BookingService
}

func newFixture(plan string) *fixture {
	cfg := testConfig()
	f := &fixture{
		bookings: &mockBookingRepository{},
		locks:    &mockSlotLockRepository{},
		staff: &mockStaffRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Staff, error) {
				return testStaff(), nil
			},
			findByTenantFunc: func(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error) {
				return []*model.Staff{testStaff()}, nil
			},
		},
		services: &mockServiceRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
				return testService(), nil
			},
		},
	}

	gate := entitlements.NewGate(&mockTenantRepository{
		tenant: &model.Tenant{ID: "tenant-1", Plan: plan},
	}, cfg.Log)

	f.service = NewBookingService(
		f.bookings,
		f.locks,
		f.staff,
		f.services,
		gate,
		availability.NewCalculator(cfg.SlotGranularityMin),
		validator.NewBookingValidator(cfg.Log),
		events.NopPublisher{},
		clock.Fixed(monday9),
		cfg,
	)
	return f
}

func TestCreate_SnapshotsServiceNameAndPrice(t *testing.T) {
	f := newFixture(entitlements.PlanPro)

	booking, err := f.service.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
	if booking.ServiceName != "Cut & Finish" {
		t.Errorf("expected service name snapshot, got %q", booking.ServiceName)
	}
	if booking.Price.Amount != 3000 || booking.Price.Currency != "EUR" {
		t.Errorf("expected price snapshot 3000 EUR, got %v", booking.Price)
	}
	if !booking.EndTime.Equal(monday9.Add(45 * time.Minute)) {
		t.Errorf("expected end time derived from service duration, got %v", booking.EndTime)
	}
	if len(f.locks.released) != 1 {
		t.Errorf("expected slot lock to be released, released=%v", f.locks.released)
	}
}

func TestCreate_LockConflict(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.locks.acquireFunc = func(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error) {
		return nil, bookingerrors.ErrLockTaken
	}

	_, err := f.service.Create(context.Background(), testRequest())
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE on lock conflict, got %v", err)
	}
}

func TestCreate_OverlappingRangeContendsOnSharedBucket(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	_, acquire := heldSlotLocks()
	f.locks.acquireFunc = acquire

	// An in-flight 60-minute booking at 09:00 holds its bucket locks but has
	// not committed yet, so the transactional re-check cannot see it.
	inFlight := model.TimeRange{Start: monday9, End: monday9.Add(60 * time.Minute)}
	if _, err := acquire(context.Background(), "tenant-1", "staff-1", inFlight); err != nil {
		t.Fatalf("failed to seed in-flight locks: %v", err)
	}

	// A 45-minute request at 09:30 overlaps 09:30-10:00 without sharing the
	// start time. It must contend on the shared 09:30 bucket.
	req := testRequest()
	req.StartTime = monday9.Add(30 * time.Minute)

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE for overlapping range, got %v", err)
	}
}

func TestCreate_LockConflictReleasesNothing(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	held, acquire := heldSlotLocks()
	f.locks.acquireFunc = acquire

	inFlight := model.TimeRange{Start: monday9.Add(30 * time.Minute), End: monday9.Add(75 * time.Minute)}
	if _, err := acquire(context.Background(), "tenant-1", "staff-1", inFlight); err != nil {
		t.Fatalf("failed to seed in-flight locks: %v", err)
	}
	seeded := len(held)

	// The 45-minute request at 09:00 spans the 09:30 bucket and is rejected.
	req := testRequest()

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Fatalf("expected SLOT_UNAVAILABLE, got %v", err)
	}
	if len(held) != seeded {
		t.Errorf("losing attempt must not leave locks behind, held=%v", held)
	}
}

func TestCreate_OverlapRecheckInsideTransaction(t *testing.T) {
	f := newFixture(entitlements.PlanPro)

	// Availability read sees a free day, but by transaction time a competing
	// booking committed for the exact range.
	calls := 0
	f.bookings.findOccupyingFunc = func(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*model.Booking, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return []*model.Booking{{
			ID:        "rival",
			StaffID:   staffID,
			StartTime: monday9,
			EndTime:   monday9.Add(45 * time.Minute),
			Status:    model.BookingConfirmed,
		}}, nil
	}

	_, err := f.service.Create(context.Background(), testRequest())
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE from transactional re-check, got %v", err)
	}
	if len(f.locks.released) != 1 {
		t.Error("lock must be released even when the transaction rejects")
	}
}

func TestCreate_MonthlyQuotaExceeded(t *testing.T) {
	f := newFixture(entitlements.PlanFree)
	f.bookings.countInRangeFunc = func(ctx context.Context, tenantID string, from, to time.Time) (int64, error) {
		return 50, nil
	}

	_, err := f.service.Create(context.Background(), testRequest())
	if !apperrors.HasCode(err, apperrors.CodeQuotaExceeded) {
		t.Errorf("expected QUOTA_EXCEEDED at the FREE monthly cap, got %v", err)
	}
}

func TestCreate_UnqualifiedStaff(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.staff.findByIDFunc = func(ctx context.Context, id string) (*model.Staff, error) {
		s := testStaff()
		s.Specialties = []string{"nails"}
		return s, nil
	}

	_, err := f.service.Create(context.Background(), testRequest())
	if !apperrors.HasCode(err, apperrors.CodeStaffUnqualified) {
		t.Errorf("expected STAFF_UNQUALIFIED, got %v", err)
	}
}

func TestCreate_SlotOutsideWorkingHours(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	req := testRequest()
	req.StartTime = time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE outside working hours, got %v", err)
	}
}

func TestCreate_OffGranularityStart(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	req := testRequest()
	req.StartTime = time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE for off-granularity start, got %v", err)
	}
}

func TestCreate_PastStartRejected(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	req := testRequest()
	req.StartTime = monday9.Add(-time.Hour)

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for a past start time, got %v", err)
	}
}

func TestCreate_ResolvesAnyQualifiedStaff(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	req := testRequest()
	req.StaffID = ""

	booking, err := f.service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.StaffID != "staff-1" {
		t.Errorf("expected resolved staff-1, got %q", booking.StaffID)
	}
}

func TestCreate_NoQualifiedStaffAvailable(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.staff.findByTenantFunc = func(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error) {
		return nil, nil
	}
	req := testRequest()
	req.StaffID = ""

	_, err := f.service.Create(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
		t.Errorf("expected SLOT_UNAVAILABLE with empty roster, got %v", err)
	}
}

func TestCreate_DeactivatedStaff(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.staff.findByIDFunc = func(ctx context.Context, id string) (*model.Staff, error) {
		s := testStaff()
		s.Active = false
		return s, nil
	}

	_, err := f.service.Create(context.Background(), testRequest())
	if !apperrors.HasCode(err, apperrors.CodeInvalidState) {
		t.Errorf("expected INVALID_STATE for deactivated staff, got %v", err)
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name     string
		current  model.BookingStatus
		action   string
		wantCode string
	}{
		{"cancel confirmed", model.BookingConfirmed, "cancel", ""},
		{"complete confirmed", model.BookingConfirmed, "complete", ""},
		{"cancel pending", model.BookingPending, "cancel", ""},
		{"complete pending", model.BookingPending, "complete", apperrors.CodeInvalidState},
		{"cancel cancelled", model.BookingCancelled, "cancel", apperrors.CodeInvalidState},
		{"complete completed", model.BookingCompleted, "complete", apperrors.CodeInvalidState},
		{"cancel completed", model.BookingCompleted, "cancel", apperrors.CodeInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(entitlements.PlanPro)
			f.bookings.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
				return &model.Booking{ID: id, TenantID: "tenant-1", Status: tt.current}, nil
			}

			var err error
			if tt.action == "cancel" {
				err = f.service.Cancel(context.Background(), "booking-1")
			} else {
				err = f.service.Complete(context.Background(), "booking-1")
			}

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestTransition_ConcurrentStatusChange(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.bookings.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, TenantID: "tenant-1", Status: model.BookingConfirmed}, nil
	}
	f.bookings.updateStatusFunc = func(ctx context.Context, id string, from, to model.BookingStatus) error {
		return bookingerrors.ErrNotFound
	}

	err := f.service.Cancel(context.Background(), "booking-1")
	if !apperrors.HasCode(err, apperrors.CodeInvalidState) {
		t.Errorf("expected INVALID_STATE when the compare-and-set misses, got %v", err)
	}
}

func TestListAvailableSlots_ForStaff(t *testing.T) {
	f := newFixture(entitlements.PlanPro)

	slots, err := f.service.ListAvailableSlots(context.Background(), "tenant-1", "svc-1", "staff-1", monday9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 5 {
		t.Errorf("expected 5 slots for an empty Monday, got %d", len(slots))
	}
}

func TestListAvailableSlots_TenantMismatch(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.services.findByIDFunc = func(ctx context.Context, id string) (*model.Service, error) {
		svc := testService()
		svc.TenantID = "other-tenant"
		return svc, nil
	}

	_, err := f.service.ListAvailableSlots(context.Background(), "tenant-1", "svc-1", "", monday9)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for cross-tenant service, got %v", err)
	}
}

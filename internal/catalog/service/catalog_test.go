package service

import (
	"context"
	"testing"

	catalogerrors "aurabook/internal/catalog/errors"
	"aurabook/internal/catalog/validator"
	"aurabook/internal/entitlements"
	"aurabook/pkg/config"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

type mockStaffRepository struct {
	createFunc   func(ctx context.Context, staff *model.Staff) error
	findByIDFunc func(ctx context.Context, id string) (*model.Staff, error)
	countFunc    func(ctx context.Context, tenantID string) (int64, error)
	updated      *model.Staff
}

func (m *mockStaffRepository) Create(ctx context.Context, staff *model.Staff) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, staff)
	}
	staff.ID = "staff-1"
	return nil
}

func (m *mockStaffRepository) FindByID(ctx context.Context, id string) (*model.Staff, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockStaffRepository) FindByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error) {
	return nil, nil
}

func (m *mockStaffRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *mockStaffRepository) Update(ctx context.Context, id string, staff *model.Staff) error {
	m.updated = staff
	return nil
}

type mockServiceRepository struct {
	createFunc func(ctx context.Context, svc *model.Service) error
	countFunc  func(ctx context.Context, tenantID string) (int64, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, svc)
	}
	svc.ID = "svc-1"
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	return nil, catalogerrors.ErrNotFound
}

func (m *mockServiceRepository) FindByTenant(ctx context.Context, tenantID string) ([]*model.Service, error) {
	return nil, nil
}

func (m *mockServiceRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, svc *model.Service) error {
	return nil
}

func (m *mockServiceRepository) Delete(ctx context.Context, id string) error { return nil }

type mockTenantRepository struct {
	tenant *model.Tenant
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	return m.tenant, nil
}

type fixture struct {
	staff    *mockStaffRepository
	services *mockServiceRepository
	service  CatalogService
}

func newFixture(plan string) *fixture {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		DefaultCurrency: "EUR",
	}

	f := &fixture{
		staff:    &mockStaffRepository{},
		services: &mockServiceRepository{},
	}

	gate := entitlements.NewGate(&mockTenantRepository{
		tenant: &model.Tenant{ID: "tenant-1", Plan: plan},
	}, cfg.Log)

	f.service = NewCatalogService(f.staff, f.services, gate, validator.NewCatalogValidator(cfg.Log), cfg)
	return f
}

func validStaff() *model.Staff {
	return &model.Staff{
		TenantID:    "tenant-1",
		Name:        "  Ana   Costa ",
		Specialties: []string{"Hair", "hair", "  Nails "},
		WorkingHours: map[string][]model.WorkingWindow{
			"Monday": {{Start: "09:00", End: "17:00"}},
		},
	}
}

func TestCreateStaff_SanitizesInput(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	staff := validStaff()

	if err := f.service.CreateStaff(context.Background(), staff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if staff.Name != "Ana Costa" {
		t.Errorf("expected normalized name, got %q", staff.Name)
	}
	if len(staff.Specialties) != 2 || staff.Specialties[0] != "hair" || staff.Specialties[1] != "nails" {
		t.Errorf("expected deduplicated lowercase specialties, got %v", staff.Specialties)
	}
	if !staff.Active {
		t.Error("new staff must start active")
	}
}

func TestCreateStaff_QuotaEnforced(t *testing.T) {
	f := newFixture(entitlements.PlanFree)
	f.staff.countFunc = func(ctx context.Context, tenantID string) (int64, error) {
		return 2, nil
	}

	err := f.service.CreateStaff(context.Background(), validStaff())
	if !apperrors.HasCode(err, apperrors.CodeQuotaExceeded) {
		t.Errorf("expected QUOTA_EXCEEDED at FREE staff limit, got %v", err)
	}
}

func TestCreateStaff_InvalidWorkingWindow(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	staff := validStaff()
	staff.WorkingHours["Monday"] = []model.WorkingWindow{{Start: "17:00", End: "09:00"}}

	err := f.service.CreateStaff(context.Background(), staff)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for inverted window, got %v", err)
	}
}

func TestCreateStaff_BadClockFormat(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	staff := validStaff()
	staff.WorkingHours["Monday"] = []model.WorkingWindow{{Start: "9am", End: "17:00"}}

	err := f.service.CreateStaff(context.Background(), staff)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for bad clock format, got %v", err)
	}
}

func TestCreateService_DefaultsCurrency(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	svc := &model.Service{
		TenantID:    "tenant-1",
		Name:        "Cut",
		Price:       model.Money{Amount: 3000},
		DurationMin: 45,
		Category:    "Hair",
	}

	if err := f.service.CreateService(context.Background(), svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Price.Currency != "EUR" {
		t.Errorf("expected default currency EUR, got %q", svc.Price.Currency)
	}
	if svc.Category != "hair" {
		t.Errorf("expected lowercased category, got %q", svc.Category)
	}
}

func TestCreateService_QuotaEnforced(t *testing.T) {
	f := newFixture(entitlements.PlanFree)
	f.services.countFunc = func(ctx context.Context, tenantID string) (int64, error) {
		return 5, nil
	}

	err := f.service.CreateService(context.Background(), &model.Service{
		TenantID:    "tenant-1",
		Name:        "Cut",
		Price:       model.NewMoney(3000, "EUR"),
		DurationMin: 45,
	})
	if !apperrors.HasCode(err, apperrors.CodeQuotaExceeded) {
		t.Errorf("expected QUOTA_EXCEEDED at FREE service limit, got %v", err)
	}
}

func TestCreateService_NegativePrice(t *testing.T) {
	f := newFixture(entitlements.PlanPro)

	err := f.service.CreateService(context.Background(), &model.Service{
		TenantID:    "tenant-1",
		Name:        "Cut",
		Price:       model.NewMoney(-100, "EUR"),
		DurationMin: 45,
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for negative price, got %v", err)
	}
}

func TestDeactivateStaff(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.staff.findByIDFunc = func(ctx context.Context, id string) (*model.Staff, error) {
		s := validStaff()
		s.ID = id
		s.Name = "Ana Costa"
		s.Specialties = []string{"hair"}
		s.Active = true
		return s, nil
	}

	if err := f.service.DeactivateStaff(context.Background(), "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.staff.updated == nil || f.staff.updated.Active {
		t.Error("expected staff to be persisted as inactive")
	}
}

func TestDeactivateStaff_AlreadyInactive(t *testing.T) {
	f := newFixture(entitlements.PlanPro)
	f.staff.findByIDFunc = func(ctx context.Context, id string) (*model.Staff, error) {
		s := validStaff()
		s.ID = id
		s.Active = false
		return s, nil
	}

	err := f.service.DeactivateStaff(context.Background(), "staff-1")
	if !apperrors.HasCode(err, apperrors.CodeInvalidState) {
		t.Errorf("expected INVALID_STATE, got %v", err)
	}
}

func TestGetStaff_NotFound(t *testing.T) {
	f := newFixture(entitlements.PlanPro)

	_, err := f.service.GetStaff(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

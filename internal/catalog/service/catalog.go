package service

import (
	"context"
	"errors"

	catalogerrors "aurabook/internal/catalog/errors"
	"aurabook/internal/catalog/repository"
	"aurabook/internal/catalog/validator"
	"aurabook/internal/entitlements"
	"aurabook/pkg/config"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/model"
	"aurabook/pkg/sanitizer"
)

type CatalogService interface {
	CreateStaff(ctx context.Context, staff *model.Staff) error
	GetStaff(ctx context.Context, id string) (*model.Staff, error)
	ListStaff(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error)
	UpdateStaff(ctx context.Context, id string, updates *model.StaffUpdate) error
	DeactivateStaff(ctx context.Context, id string) error

	CreateService(ctx context.Context, svc *model.Service) error
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context, tenantID string) ([]*model.Service, error)
	UpdateService(ctx context.Context, id string, updates *model.ServiceUpdate) error
	DeleteService(ctx context.Context, id string) error
}

type catalogService struct {
	staff     repository.StaffRepository
	services  repository.ServiceRepository
	gate      *entitlements.Gate
	validator *validator.CatalogValidator
	cfg       *config.Config
}

func NewCatalogService(
	staff repository.StaffRepository,
	services repository.ServiceRepository,
	gate *entitlements.Gate,
	validator *validator.CatalogValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		staff:     staff,
		services:  services,
		gate:      gate,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) CreateStaff(ctx context.Context, staff *model.Staff) error {
	staff.Name = sanitizer.NormalizeName(staff.Name)
	staff.Specialties = sanitizer.NormalizeTags(staff.Specialties)
	staff.Active = true

	if err := s.validator.ValidateStaff(staff); err != nil {
		s.cfg.Log.Warn("Staff validation failed", "tenant_id", staff.TenantID, "error", err)
		return apperrors.Validation("Staff validation failed", map[string]any{"error": err.Error()})
	}

	// Quota is checked against a live count at decision time.
	count, err := s.staff.CountByTenant(ctx, staff.TenantID)
	if err != nil {
		return apperrors.Storage("Failed to count staff", err)
	}
	if err := s.gate.RequireCreate(ctx, staff.TenantID, entitlements.ResourceStaff, int(count)); err != nil {
		return err
	}

	if err := s.staff.Create(ctx, staff); err != nil {
		return apperrors.Storage("Failed to create staff", err)
	}

	s.cfg.Log.Info("Staff created successfully", "id", staff.ID, "tenant_id", staff.TenantID, "name", staff.Name)
	return nil
}

func (s *catalogService) GetStaff(ctx context.Context, id string) (*model.Staff, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}
	staff, err := s.staff.FindByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err, "Staff", id)
	}
	return staff, nil
}

func (s *catalogService) ListStaff(ctx context.Context, tenantID string, activeOnly bool) ([]*model.Staff, error) {
	if tenantID == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	staff, err := s.staff.FindByTenant(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, apperrors.Storage("Failed to list staff", err)
	}
	return staff, nil
}

func (s *catalogService) UpdateStaff(ctx context.Context, id string, updates *model.StaffUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Staff ID cannot be empty")
	}
	existing, err := s.staff.FindByID(ctx, id)
	if err != nil {
		return mapCatalogError(err, "Staff", id)
	}

	if err := s.validator.ValidateStaffUpdate(updates); err != nil {
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergeStaffUpdates(existing, updates)
	if err := s.validator.ValidateStaff(merged); err != nil {
		return apperrors.Validation("Staff validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.staff.Update(ctx, id, merged); err != nil {
		return mapCatalogError(err, "Staff", id)
	}

	s.cfg.Log.Info("Staff updated successfully", "id", id)
	return nil
}

// DeactivateStaff soft-deactivates. Staff referenced by historical bookings
// are never hard-deleted.
func (s *catalogService) DeactivateStaff(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Staff ID cannot be empty")
	}
	existing, err := s.staff.FindByID(ctx, id)
	if err != nil {
		return mapCatalogError(err, "Staff", id)
	}
	if !existing.Active {
		return apperrors.InvalidState("Staff member is already deactivated")
	}

	existing.Active = false
	if err := s.staff.Update(ctx, id, existing); err != nil {
		return mapCatalogError(err, "Staff", id)
	}

	s.cfg.Log.Info("Staff deactivated", "id", id, "tenant_id", existing.TenantID)
	return nil
}

func (s *catalogService) CreateService(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.Category = sanitizer.NormalizeTag(svc.Category)
	if svc.Price.Currency == "" {
		svc.Price.Currency = s.cfg.DefaultCurrency
	}

	if err := s.validator.ValidateService(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "tenant_id", svc.TenantID, "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	count, err := s.services.CountByTenant(ctx, svc.TenantID)
	if err != nil {
		return apperrors.Storage("Failed to count services", err)
	}
	if err := s.gate.RequireCreate(ctx, svc.TenantID, entitlements.ResourceServices, int(count)); err != nil {
		return err
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return apperrors.Storage("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully", "id", svc.ID, "tenant_id", svc.TenantID, "name", svc.Name)
	return nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err, "Service", id)
	}
	return svc, nil
}

func (s *catalogService) ListServices(ctx context.Context, tenantID string) ([]*model.Service, error) {
	if tenantID == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	services, err := s.services.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Storage("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id string, updates *model.ServiceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}
	existing, err := s.services.FindByID(ctx, id)
	if err != nil {
		return mapCatalogError(err, "Service", id)
	}

	if err := s.validator.ValidateServiceUpdate(updates); err != nil {
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergeServiceUpdates(existing, updates)
	if err := s.validator.ValidateService(merged); err != nil {
		return apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.services.Update(ctx, id, merged); err != nil {
		return mapCatalogError(err, "Service", id)
	}

	s.cfg.Log.Info("Service updated successfully", "id", id)
	return nil
}

// DeleteService removes the service. Historical bookings keep their
// name/price snapshot, so no booking is orphaned by this.
func (s *catalogService) DeleteService(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return mapCatalogError(err, "Service", id)
	}
	s.cfg.Log.Info("Service deleted", "id", id)
	return nil
}

// --- Helpers ---

func mergeStaffUpdates(existing *model.Staff, updates *model.StaffUpdate) *model.Staff {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Role != "" {
		merged.Role = updates.Role
	}
	if updates.Specialties != nil {
		merged.Specialties = sanitizer.NormalizeTags(*updates.Specialties)
	}
	if updates.WorkingHours != nil {
		merged.WorkingHours = *updates.WorkingHours
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	return &merged
}

func mergeServiceUpdates(existing *model.Service, updates *model.ServiceUpdate) *model.Service {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.Category != "" {
		merged.Category = sanitizer.NormalizeTag(updates.Category)
	}

	return &merged
}

func mapCatalogError(err error, resource, id string) error {
	if errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, catalogerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Storage("Failed to access "+resource, err)
}

package entitlements

import (
	"context"
	"errors"

	entitlementserrors "aurabook/internal/entitlements/errors"
	"aurabook/internal/entitlements/repository"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

// Gate answers entitlement questions for resource-creation and booking flows.
// Every check re-reads the tenant document; unknown plans fail closed.
type Gate struct {
	tenants repository.TenantRepository
	log     *logger.Logger
}

func NewGate(tenants repository.TenantRepository, log *logger.Logger) *Gate {
	return &Gate{tenants: tenants, log: log}
}

// Tenant loads the tenant behind the gate's checks. Exposed so callers can
// reuse the freshly-read document (timezone, currency) within one request.
func (g *Gate) Tenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	tenant, err := g.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, entitlementserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tenant", tenantID)
		}
		if errors.Is(err, entitlementserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid tenant ID format")
		}
		return nil, apperrors.Storage("Failed to load tenant", err)
	}
	return tenant, nil
}

// IsModuleEnabled is plain membership over the tenant's enabled-module set.
func (g *Gate) IsModuleEnabled(ctx context.Context, tenantID, module string) (bool, error) {
	tenant, err := g.Tenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return tenant.HasModule(module), nil
}

// RequireModule turns a disabled module into the typed rejection callers
// surface to the UI.
func (g *Gate) RequireModule(ctx context.Context, tenantID, module string) error {
	enabled, err := g.IsModuleEnabled(ctx, tenantID, module)
	if err != nil {
		return err
	}
	if !enabled {
		return apperrors.ModuleDisabled(module)
	}
	return nil
}

// createAllowance decides the quota question and carries the limit from the
// same tenant read, so a rejection reports the snapshot it was decided on.
func (g *Gate) createAllowance(ctx context.Context, tenantID, resource string, currentCount int) (bool, int, error) {
	tenant, err := g.Tenant(ctx, tenantID)
	if err != nil {
		return false, 0, err
	}
	plan, ok := PlanByName(tenant.Plan)
	if !ok {
		g.log.Warn("Unknown plan, failing closed", "tenant_id", tenantID, "plan", tenant.Plan)
		return false, 0, nil
	}
	limit, ok := plan.limitFor(resource)
	if !ok {
		return false, 0, nil
	}
	if limit == Unlimited {
		return true, limit, nil
	}
	return currentCount < limit, limit, nil
}

// CanCreate reports whether the tenant may create one more resource of the
// given type. currentCount must be a live count taken at decision time, not a
// cached counter.
func (g *Gate) CanCreate(ctx context.Context, tenantID, resource string, currentCount int) (bool, error) {
	allowed, _, err := g.createAllowance(ctx, tenantID, resource, currentCount)
	return allowed, err
}

// RequireCreate converts a failed CanCreate into the quota rejection.
func (g *Gate) RequireCreate(ctx context.Context, tenantID, resource string, currentCount int) error {
	allowed, limit, err := g.createAllowance(ctx, tenantID, resource, currentCount)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.QuotaExceeded(resource, limit)
	}
	return nil
}

// bookAllowance mirrors createAllowance for the monthly booking cap.
func (g *Gate) bookAllowance(ctx context.Context, tenantID string, monthlyBookingCount int64) (bool, int, error) {
	tenant, err := g.Tenant(ctx, tenantID)
	if err != nil {
		return false, 0, err
	}
	plan, ok := PlanByName(tenant.Plan)
	if !ok {
		g.log.Warn("Unknown plan, failing closed", "tenant_id", tenantID, "plan", tenant.Plan)
		return false, 0, nil
	}
	limit := plan.Limits.BookingsMonth
	if limit == Unlimited {
		return true, limit, nil
	}
	return monthlyBookingCount < int64(limit), limit, nil
}

// CanBook checks the plan's monthly booking cap against a live recount of
// this month's bookings.
func (g *Gate) CanBook(ctx context.Context, tenantID string, monthlyBookingCount int64) (bool, error) {
	allowed, _, err := g.bookAllowance(ctx, tenantID, monthlyBookingCount)
	return allowed, err
}

// RequireBook converts a failed CanBook into the quota rejection.
func (g *Gate) RequireBook(ctx context.Context, tenantID string, monthlyBookingCount int64) error {
	allowed, limit, err := g.bookAllowance(ctx, tenantID, monthlyBookingCount)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.QuotaExceeded(ResourceBookings, limit)
	}
	return nil
}

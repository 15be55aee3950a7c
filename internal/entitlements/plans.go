// Package entitlements decides what a tenant's subscription plan allows:
// module access and numeric quotas. Plan definitions are process-wide,
// read-only reference data; the tenant's current plan is read fresh on every
// check so a plan change takes effect on the next request.
package entitlements

// Unlimited marks a quota with no cap.
const Unlimited = -1

const (
	PlanFree       = "FREE"
	PlanBasic      = "BASIC"
	PlanPro        = "PRO"
	PlanEnterprise = "ENTERPRISE"
)

const (
	ResourceStaff    = "staff"
	ResourceServices = "services"
	ResourceBookings = "bookings"
)

const (
	ModuleMarketing = "marketing"
	ModuleGiftCards = "gift_cards"
	ModuleCourses   = "courses"
	ModuleAnalytics = "analytics"
)

type Limits struct {
	Staff         int
	Services      int
	BookingsMonth int
}

type Plan struct {
	Name    string
	Modules []string
	Limits  Limits
}

// plans is the plan → modules/limits table. Staff and service counts mirror
// the published pricing tiers; monthly booking caps scale with them.
var plans = map[string]Plan{
	PlanFree: {
		Name:   PlanFree,
		Limits: Limits{Staff: 2, Services: 5, BookingsMonth: 50},
	},
	PlanBasic: {
		Name:    PlanBasic,
		Modules: []string{ModuleMarketing},
		Limits:  Limits{Staff: 5, Services: 20, BookingsMonth: 200},
	},
	PlanPro: {
		Name:    PlanPro,
		Modules: []string{ModuleMarketing, ModuleGiftCards},
		Limits:  Limits{Staff: 15, Services: 50, BookingsMonth: 1000},
	},
	PlanEnterprise: {
		Name:    PlanEnterprise,
		Modules: []string{ModuleMarketing, ModuleGiftCards, ModuleCourses, ModuleAnalytics},
		Limits:  Limits{Staff: Unlimited, Services: Unlimited, BookingsMonth: Unlimited},
	},
}

// PlanByName returns the plan definition. Unknown names return ok=false;
// callers must fail closed, never default to permissive.
func PlanByName(name string) (Plan, bool) {
	p, ok := plans[name]
	return p, ok
}

// GrantsModule reports whether the plan itself includes the module,
// independent of the tenant's per-tenant module toggles.
func (p Plan) GrantsModule(name string) bool {
	for _, m := range p.Modules {
		if m == name {
			return true
		}
	}
	return false
}

func (p Plan) limitFor(resource string) (int, bool) {
	switch resource {
	case ResourceStaff:
		return p.Limits.Staff, true
	case ResourceServices:
		return p.Limits.Services, true
	default:
		return 0, false
	}
}

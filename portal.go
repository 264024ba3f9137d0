package access

// ============================================================================
// PORTALS
// ============================================================================

// Portal is one of the role-gated UI entry points.
type Portal string

const (
	PortalCustomer Portal = "customer"
	PortalDriver   Portal = "driver"
	PortalStaff    Portal = "staff"
)

// CanAccessPortal is the route-guard check: staff portal admits staff and
// admin, the driver and customer portals admit only their own role.
func CanAccessPortal(p *Principal, portal Portal) bool {
	if p == nil {
		return false
	}
	switch portal {
	case PortalStaff:
		return p.HasAnyRole(RoleStaff, RoleAdmin)
	case PortalDriver:
		return p.HasRole(RoleDriver)
	case PortalCustomer:
		return p.HasRole(RoleCustomer)
	}
	return false
}

// AccessiblePortals returns every portal the principal's role set admits,
// in the fixed staff, driver, customer order.
func AccessiblePortals(p *Principal) []Portal {
	out := make([]Portal, 0, 3)
	for _, portal := range []Portal{PortalStaff, PortalDriver, PortalCustomer} {
		if CanAccessPortal(p, portal) {
			out = append(out, portal)
		}
	}
	return out
}

// DefaultPortal picks the portal a principal lands on. A recorded last-used
// portal wins while it is still accessible; otherwise the tie-break is fixed:
// staff or admin first, then driver, then customer.
func DefaultPortal(p *Principal) Portal {
	if p == nil {
		return PortalCustomer
	}
	if p.LastPortal != "" && CanAccessPortal(p, p.LastPortal) {
		return p.LastPortal
	}
	switch {
	case p.HasAnyRole(RoleStaff, RoleAdmin):
		return PortalStaff
	case p.HasRole(RoleDriver):
		return PortalDriver
	default:
		return PortalCustomer
	}
}

// ResolvePortals computes the accessible set and the default in one call,
// the shape portal pickers render from.
func ResolvePortals(p *Principal) ([]Portal, Portal) {
	return AccessiblePortals(p), DefaultPortal(p)
}

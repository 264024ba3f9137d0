package access

// ============================================================================
// PRINCIPAL
// ============================================================================

// Role is one of the fixed role tags a principal may hold.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
)

// Principal represents the authenticated caller for a single request.
// It is constructed once from verified credentials and treated as immutable
// for the duration of the permission check. The evaluator never persists it.
type Principal struct {
	ID         string `json:"id"`
	Roles      []Role `json:"roles"`
	CustomerID string `json:"customer_id,omitempty"` // owned customer ref for ownership checks
	LastPortal Portal `json:"last_portal,omitempty"`
}

// NewPrincipal builds a Principal from a role slice, normalizing the set:
// duplicates are removed and order is preserved. An empty slice yields a
// principal the evaluator default-denies everywhere, so callers coming from
// a legacy single-role column should use NewPrincipalWithRole.
func NewPrincipal(id string, roles []Role) *Principal {
	seen := make(map[Role]bool, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return &Principal{ID: id, Roles: out}
}

// NewPrincipalWithRole treats a legacy single role field as a one-element
// role set.
func NewPrincipalWithRole(id string, role Role) *Principal {
	return NewPrincipal(id, []Role{role})
}

// HasRole reports whether the principal's role set contains r.
func (p *Principal) HasRole(r Role) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the given roles.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// WithCustomer returns a copy of the principal carrying an owned-customer
// reference, used by customer ownership predicates.
func (p *Principal) WithCustomer(customerID string) *Principal {
	cp := *p
	cp.CustomerID = customerID
	return &cp
}

// WithLastPortal returns a copy carrying the last-used portal preference.
func (p *Principal) WithLastPortal(portal Portal) *Principal {
	cp := *p
	cp.LastPortal = portal
	return &cp
}

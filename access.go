// Package access implements the role and ownership based permission layer
// for the swifthaul platform: a pure evaluator over a fixed, compiled-in rule
// table, portal derivation from the same role set, and a best-effort audit
// trail recording every decision.
package access

// ============================================================================
// ACTIONS AND RESOURCES
// ============================================================================

// Action is how a resource is being accessed. Manage is the most permissive
// action: a rule granting full control grants create/read/update/delete and
// manage together.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// ResourceType is a category of protected entity. Each type has a dedicated
// rule function in the table below.
type ResourceType string

const (
	ResourcePackage  ResourceType = "Package"
	ResourceCustomer ResourceType = "Customer"
	ResourceLoad     ResourceType = "Load"
	ResourceInvoice  ResourceType = "Invoice"
	ResourceUser     ResourceType = "User"
	ResourceSettings ResourceType = "Settings"
	ResourceReport   ResourceType = "Report"
	ResourceRoute    ResourceType = "Route"
	ResourceDelivery ResourceType = "Delivery"
	ResourceAuditLog ResourceType = "AuditLog"
)

// ============================================================================
// EVALUATOR
// ============================================================================

// ruleFunc decides a single resource type. The admin shortcut has already
// been applied when a rule runs.
type ruleFunc func(p *Principal, action Action, subject Subject) bool

// resourceRules maps every resource type to its predicate. Keeping each rule
// an independent function keeps them independently testable; there is no
// dynamic registration, the table is fixed at compile time.
var resourceRules = map[ResourceType]ruleFunc{
	ResourcePackage:  rulePackage,
	ResourceCustomer: ruleCustomer,
	ResourceLoad:     ruleLoad,
	ResourceInvoice:  ruleInvoice,
	ResourceUser:     ruleUser,
	ResourceSettings: ruleAdminOnly,
	ResourceReport:   ruleReport,
	ResourceRoute:    ruleDriverOperated,
	ResourceDelivery: ruleDriverOperated,
	ResourceAuditLog: ruleAdminOnly,
}

// CanPerform decides whether the principal may perform action on the given
// resource type. It is pure and deterministic: no I/O, no shared state, and
// denial is a false return rather than an error.
//
// A nil subject answers the coarse "could this role ever perform the action"
// question used for UI gating and list filtering; callers re-check per item
// with the concrete subject.
func CanPerform(p *Principal, action Action, resource ResourceType, subject Subject) bool {
	if p == nil {
		return false
	}
	// The only global shortcut: admin is allowed everything.
	if p.HasRole(RoleAdmin) {
		return true
	}
	rule, ok := resourceRules[resource]
	if !ok {
		return false
	}
	return rule(p, action, subject)
}

// within reports whether the requested action falls inside a granted set.
// Granting manage implies every other action.
func within(requested Action, granted ...Action) bool {
	for _, g := range granted {
		if g == ActionManage || g == requested {
			return true
		}
	}
	return false
}

// ============================================================================
// PER-RESOURCE RULES
// ============================================================================

func rulePackage(p *Principal, action Action, subject Subject) bool {
	if p.HasRole(RoleStaff) {
		return true
	}
	if p.HasRole(RoleCustomer) && within(action, ActionRead) {
		if subject == nil {
			return true
		}
		if ownedBy(subject, p.CustomerID) {
			return true
		}
	}
	if p.HasRole(RoleDriver) && within(action, ActionRead) {
		if subject == nil {
			return true
		}
		if carriesLoadFor(subject, p.ID) {
			return true
		}
	}
	return false
}

func ruleCustomer(p *Principal, action Action, subject Subject) bool {
	if p.HasRole(RoleStaff) {
		return true
	}
	if p.HasRole(RoleCustomer) && within(action, ActionRead, ActionUpdate) {
		if subject == nil {
			return true
		}
		if p.CustomerID != "" && subject.SubjectID() == p.CustomerID {
			return true
		}
	}
	return false
}

func ruleLoad(p *Principal, action Action, subject Subject) bool {
	if p.HasRole(RoleStaff) {
		return true
	}
	if p.HasRole(RoleDriver) && within(action, ActionRead, ActionUpdate) {
		if subject == nil {
			return true
		}
		if assignedTo(subject, p.ID) {
			return true
		}
	}
	return false
}

func ruleInvoice(p *Principal, action Action, subject Subject) bool {
	if p.HasRole(RoleStaff) {
		return true
	}
	if p.HasRole(RoleCustomer) && within(action, ActionRead) {
		if subject == nil {
			return true
		}
		if ownedBy(subject, p.CustomerID) {
			return true
		}
	}
	return false
}

// ruleDriverOperated covers routes and deliveries: staff manage them,
// drivers have full control over their own assignments.
func ruleDriverOperated(p *Principal, action Action, subject Subject) bool {
	if p.HasRole(RoleStaff) {
		return true
	}
	if p.HasRole(RoleDriver) {
		if subject == nil {
			return true
		}
		if assignedTo(subject, p.ID) {
			return true
		}
	}
	return false
}

func ruleUser(p *Principal, action Action, subject Subject) bool {
	// Self-service profile access for any role.
	if within(action, ActionRead, ActionUpdate) {
		if subject == nil {
			return true
		}
		if p.ID != "" && subject.SubjectID() == p.ID {
			return true
		}
	}
	if p.HasRole(RoleStaff) {
		if action == ActionRead {
			return true
		}
		// Staff manage regular accounts but may not create, alter or delete
		// an admin account.
		if within(action, ActionCreate, ActionUpdate, ActionDelete) {
			if subject == nil {
				return true
			}
			if !subjectIsAdmin(subject) {
				return true
			}
		}
	}
	return false
}

func ruleReport(p *Principal, action Action, subject Subject) bool {
	return p.HasRole(RoleStaff)
}

// ruleAdminOnly denies everyone; the global admin shortcut is the sole path
// to true for settings and the audit log.
func ruleAdminOnly(p *Principal, action Action, subject Subject) bool {
	return false
}

package access

// ============================================================================
// SUBJECT
// ============================================================================

// Subject is the concrete instance a permission check is scoped to. A nil
// Subject asks the coarse question "could this role ever perform the action
// on this resource type", used for list-level and UI gating checks.
//
// Ownership predicates discover the fields they need through the optional
// capability interfaces below; a subject that does not implement a capability
// simply never matches the corresponding rule.
type Subject interface {
	SubjectID() string
}

// CustomerOwned is implemented by subjects that carry an owning-customer
// reference (packages, invoices, customer records).
type CustomerOwned interface {
	// OwnerCustomerID returns the owning customer reference and whether one
	// is present on the record.
	OwnerCustomerID() (string, bool)
}

// DriverAssigned is implemented by subjects with a single assigned driver
// (loads, routes, deliveries).
type DriverAssigned interface {
	AssignedDriverID() (string, bool)
}

// LoadCarrier is implemented by subjects associated with a collection of
// loads (packages). Drivers may read a package when one of its loads is
// assigned to them.
type LoadCarrier interface {
	LoadDriverIDs() []string
}

// RoleCarrier is implemented by user subjects, whose own role matters to the
// staff-cannot-alter-admin rule.
type RoleCarrier interface {
	SubjectRoles() []Role
}

// Record adapts a loosely-typed row (decoded JSON, map scan) to the subject
// capabilities. Two historical key spellings exist for the same relationship
// in the source schema, so ownership lookups check both before concluding no
// match. Missing or mistyped fields are treated as absent, never an error.
type Record map[string]any

func (r Record) SubjectID() string {
	return r.str("id")
}

func (r Record) OwnerCustomerID() (string, bool) {
	if v := r.str("customerId"); v != "" {
		return v, true
	}
	if v := r.str("customer_id"); v != "" {
		return v, true
	}
	return "", false
}

func (r Record) AssignedDriverID() (string, bool) {
	if v := r.str("driverId"); v != "" {
		return v, true
	}
	if v := r.str("driver_id"); v != "" {
		return v, true
	}
	return "", false
}

func (r Record) LoadDriverIDs() []string {
	raw, ok := r["loads"]
	if !ok {
		return nil
	}
	var out []string
	switch loads := raw.(type) {
	case []any:
		for _, item := range loads {
			if m, ok := item.(map[string]any); ok {
				if id, ok := Record(m).AssignedDriverID(); ok {
					out = append(out, id)
				}
			}
		}
	case []Record:
		for _, m := range loads {
			if id, ok := m.AssignedDriverID(); ok {
				out = append(out, id)
			}
		}
	case []map[string]any:
		for _, m := range loads {
			if id, ok := Record(m).AssignedDriverID(); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func (r Record) SubjectRoles() []Role {
	var out []Role
	switch v := r["roles"].(type) {
	case []Role:
		out = append(out, v...)
	case []string:
		for _, s := range v {
			out = append(out, Role(s))
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, Role(s))
			}
		}
	}
	// legacy single role column
	if v := r.str("role"); v != "" {
		out = append(out, Role(v))
	}
	return out
}

func (r Record) str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// ownedBy reports whether the subject's owning-customer reference equals
// customerID. Absent capability or absent field is a non-match.
func ownedBy(subject Subject, customerID string) bool {
	if customerID == "" {
		return false
	}
	owned, ok := subject.(CustomerOwned)
	if !ok {
		return false
	}
	ref, ok := owned.OwnerCustomerID()
	return ok && ref == customerID
}

// assignedTo reports whether the subject's assigned driver equals driverID.
func assignedTo(subject Subject, driverID string) bool {
	if driverID == "" {
		return false
	}
	assigned, ok := subject.(DriverAssigned)
	if !ok {
		return false
	}
	ref, ok := assigned.AssignedDriverID()
	return ok && ref == driverID
}

// carriesLoadFor reports whether any load associated with the subject is
// assigned to driverID.
func carriesLoadFor(subject Subject, driverID string) bool {
	if driverID == "" {
		return false
	}
	carrier, ok := subject.(LoadCarrier)
	if !ok {
		return false
	}
	for _, id := range carrier.LoadDriverIDs() {
		if id == driverID {
			return true
		}
	}
	return false
}

// subjectIsAdmin reports whether a user subject holds the admin role.
func subjectIsAdmin(subject Subject) bool {
	carrier, ok := subject.(RoleCarrier)
	if !ok {
		return false
	}
	for _, r := range carrier.SubjectRoles() {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

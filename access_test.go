package access

import "testing"

var allActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}

var allResources = []ResourceType{
	ResourcePackage, ResourceCustomer, ResourceLoad, ResourceInvoice, ResourceUser,
	ResourceSettings, ResourceReport, ResourceRoute, ResourceDelivery, ResourceAuditLog,
}

func TestAdminUniversality(t *testing.T) {
	admin := NewPrincipal("a1", []Role{RoleAdmin})
	subjects := []Subject{nil, Record{"id": "x", "customerId": "someone-else"}}
	for _, resource := range allResources {
		for _, action := range allActions {
			for _, subject := range subjects {
				if !CanPerform(admin, action, resource, subject) {
					t.Fatalf("admin denied %s on %s", action, resource)
				}
			}
		}
	}
}

func TestDefaultDeny(t *testing.T) {
	cases := []struct {
		name     string
		p        *Principal
		action   Action
		resource ResourceType
		subject  Subject
	}{
		{"nil principal", nil, ActionRead, ResourcePackage, nil},
		{"empty role set", NewPrincipal("u1", nil), ActionRead, ResourcePackage, nil},
		{"unknown role", NewPrincipal("u1", []Role{"intern"}), ActionRead, ResourcePackage, nil},
		{"unknown resource", NewPrincipal("u1", []Role{RoleStaff}), ActionRead, ResourceType("Warehouse"), nil},
		{"customer writing package", NewPrincipal("u1", []Role{RoleCustomer}), ActionUpdate, ResourcePackage, nil},
		{"customer deleting customer", NewPrincipal("u1", []Role{RoleCustomer}), ActionDelete, ResourceCustomer, nil},
		{"driver creating load", NewPrincipal("d1", []Role{RoleDriver}), ActionCreate, ResourceLoad, nil},
		{"customer reading report", NewPrincipal("u1", []Role{RoleCustomer}), ActionRead, ResourceReport, nil},
		{"driver reading audit log", NewPrincipal("d1", []Role{RoleDriver}), ActionRead, ResourceAuditLog, nil},
	}
	for _, tc := range cases {
		if CanPerform(tc.p, tc.action, tc.resource, tc.subject) {
			t.Errorf("%s: expected deny", tc.name)
		}
	}
}

func TestOwnershipSymmetry(t *testing.T) {
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")

	// Both historical key spellings of the owning-customer reference match.
	if !CanPerform(customer, ActionRead, ResourcePackage, Record{"customerId": "c1"}) {
		t.Fatal("expected allow for camelCase owner key")
	}
	if !CanPerform(customer, ActionRead, ResourcePackage, Record{"customer_id": "c1"}) {
		t.Fatal("expected allow for snake_case owner key")
	}
	if CanPerform(customer, ActionRead, ResourcePackage, Record{"customerId": "c2"}) {
		t.Fatal("expected deny for other camelCase owner")
	}
	if CanPerform(customer, ActionRead, ResourcePackage, Record{"customer_id": "c2"}) {
		t.Fatal("expected deny for other snake_case owner")
	}
}

func TestMalformedSubjectDenies(t *testing.T) {
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")
	// Missing or mistyped ownership fields are a non-match, never a panic.
	for _, subject := range []Subject{
		Record{},
		Record{"customerId": 42},
		Record{"unrelated": "field"},
	} {
		if CanPerform(customer, ActionRead, ResourcePackage, subject) {
			t.Errorf("expected deny for malformed subject %v", subject)
		}
	}
}

func TestManageSuperset(t *testing.T) {
	// Staff has full control over packages, so every action including the
	// literal manage is allowed.
	staff := NewPrincipal("s1", []Role{RoleStaff})
	for _, action := range allActions {
		if !CanPerform(staff, action, ResourcePackage, nil) {
			t.Errorf("staff denied %s on Package", action)
		}
	}
	// A read-only grant does not reach manage.
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")
	if CanPerform(customer, ActionManage, ResourcePackage, Record{"customerId": "c1"}) {
		t.Fatal("customer read grant must not imply manage")
	}
	// Drivers hold full control over their own deliveries: manage grants all.
	driver := NewPrincipal("d1", []Role{RoleDriver})
	for _, action := range allActions {
		if !CanPerform(driver, action, ResourceDelivery, Record{"driverId": "d1"}) {
			t.Errorf("driver denied %s on own Delivery", action)
		}
	}
}

func TestMultiRoleUnion(t *testing.T) {
	staff := NewPrincipal("s1", []Role{RoleStaff})
	both := NewPrincipal("s1", []Role{RoleDriver, RoleStaff})
	for _, resource := range allResources {
		for _, action := range allActions {
			if CanPerform(staff, action, resource, nil) && !CanPerform(both, action, resource, nil) {
				t.Errorf("driver+staff lost staff grant: %s on %s", action, resource)
			}
		}
	}
	// And the driver grants still apply on top.
	if !CanPerform(both, ActionUpdate, ResourceLoad, Record{"driverId": "s1"}) {
		t.Fatal("driver+staff lost driver grant on own load")
	}
}

func TestDriverPackageViaLoads(t *testing.T) {
	driver := NewPrincipal("d1", []Role{RoleDriver})
	pkg := Record{
		"id": "p1",
		"loads": []any{
			map[string]any{"id": "l1", "driverId": "d9"},
			map[string]any{"id": "l2", "driver_id": "d1"},
		},
	}
	if !CanPerform(driver, ActionRead, ResourcePackage, pkg) {
		t.Fatal("driver should read a package carried on an assigned load")
	}
	other := Record{"id": "p2", "loads": []any{map[string]any{"driverId": "d9"}}}
	if CanPerform(driver, ActionRead, ResourcePackage, other) {
		t.Fatal("driver must not read packages on other drivers' loads")
	}
	if CanPerform(driver, ActionUpdate, ResourcePackage, pkg) {
		t.Fatal("driver package access is read only")
	}
}

func TestCustomerSelfService(t *testing.T) {
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")
	for _, action := range []Action{ActionRead, ActionUpdate} {
		if !CanPerform(customer, action, ResourceCustomer, Record{"id": "c1"}) {
			t.Errorf("customer denied %s on own record", action)
		}
		if CanPerform(customer, action, ResourceCustomer, Record{"id": "c2"}) {
			t.Errorf("customer allowed %s on foreign record", action)
		}
	}
}

func TestUserRules(t *testing.T) {
	staff := NewPrincipal("s1", []Role{RoleStaff})
	driver := NewPrincipal("d1", []Role{RoleDriver})

	// Self-service profile access for any role.
	if !CanPerform(driver, ActionRead, ResourceUser, Record{"id": "d1"}) {
		t.Fatal("driver denied reading own user record")
	}
	if !CanPerform(driver, ActionUpdate, ResourceUser, Record{"id": "d1"}) {
		t.Fatal("driver denied updating own user record")
	}
	if CanPerform(driver, ActionRead, ResourceUser, Record{"id": "u9"}) {
		t.Fatal("driver allowed reading another user")
	}

	// Staff read any user, manage non-admin accounts.
	if !CanPerform(staff, ActionRead, ResourceUser, Record{"id": "u9", "role": "admin"}) {
		t.Fatal("staff denied reading an admin user")
	}
	if !CanPerform(staff, ActionDelete, ResourceUser, Record{"id": "u9", "role": "customer"}) {
		t.Fatal("staff denied deleting a regular user")
	}
	if CanPerform(staff, ActionDelete, ResourceUser, Record{"id": "u9", "role": "admin"}) {
		t.Fatal("staff must not delete an admin account")
	}
	if CanPerform(staff, ActionUpdate, ResourceUser, Record{"id": "u9", "roles": []string{"admin"}}) {
		t.Fatal("staff must not alter an admin account (roles slice)")
	}
}

func TestSpecScenarios(t *testing.T) {
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")
	staff := NewPrincipal("s1", []Role{RoleStaff})
	admin := NewPrincipal("a1", []Role{RoleAdmin})

	if !CanPerform(customer, ActionRead, ResourcePackage, Record{"customerId": "c1"}) {
		t.Error("scenario 1: expected allow")
	}
	if CanPerform(customer, ActionRead, ResourcePackage, Record{"customer_id": "c2"}) {
		t.Error("scenario 2: expected deny")
	}
	if CanPerform(staff, ActionDelete, ResourceSettings, nil) {
		t.Error("scenario 3: staff has no Settings shortcut")
	}
	if !CanPerform(admin, ActionDelete, ResourceSettings, nil) {
		t.Error("scenario 4: expected allow for admin")
	}
	if CanPerform(staff, ActionDelete, ResourceUser, Record{"id": "u9", "role": "admin"}) {
		t.Error("scenario 5: staff must not delete an admin user")
	}
	both := NewPrincipal("x1", []Role{RoleDriver, RoleStaff})
	if got := DefaultPortal(both); got != PortalStaff {
		t.Errorf("scenario 6: expected staff portal, got %s", got)
	}
}

func TestNilSubjectMeansPossible(t *testing.T) {
	customer := NewPrincipal("u1", []Role{RoleCustomer}).WithCustomer("c1")
	// Without a subject the check answers "could this role ever", so a
	// customer can reach the package list and gets filtered per item.
	if !CanPerform(customer, ActionRead, ResourcePackage, nil) {
		t.Fatal("customer should pass the type-level package read check")
	}
	driver := NewPrincipal("d1", []Role{RoleDriver})
	if !CanPerform(driver, ActionUpdate, ResourceLoad, nil) {
		t.Fatal("driver should pass the type-level load update check")
	}
}

func TestPrincipalNormalization(t *testing.T) {
	p := NewPrincipal("u1", []Role{RoleStaff, RoleStaff, "", RoleDriver})
	if len(p.Roles) != 2 {
		t.Fatalf("expected dedup to 2 roles, got %v", p.Roles)
	}
	legacy := NewPrincipalWithRole("u2", RoleCustomer)
	if len(legacy.Roles) != 1 || legacy.Roles[0] != RoleCustomer {
		t.Fatalf("legacy single role not normalized: %v", legacy.Roles)
	}
}

package authz

import (
	"testing"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

var (
	superadmin = identity.Actor{ID: "sa", Role: identity.RoleSuperAdmin}
	admin      = identity.Actor{ID: "ad", Role: identity.RoleAdmin}
	manager    = identity.Actor{ID: "m1", Role: identity.RoleManager, DepartmentID: "eng", ManagedDepartments: []string{"eng"}}
	employeeE  = identity.Actor{ID: "e1", Role: identity.RoleEmployee, DepartmentID: "eng", ManagedBy: "m2"}
	reportR    = identity.Actor{ID: "e2", Role: identity.RoleEmployee, DepartmentID: "eng", ManagedBy: "m1"}
)

func TestPromoteToSuperadminRequiresSuperadmin(t *testing.T) {
	res := Resource{Kind: KindEmployee, TargetID: "e1", TargetRole: string(identity.RoleSuperAdmin)}
	for _, actor := range []identity.Actor{admin, manager, employeeE} {
		d := CanPerform(actor, ActionPromote, res)
		if d.Allowed || d.Reason != apperr.ReasonRoleEscalationDenied {
			t.Fatalf("%s: expected escalation denial, got %+v", actor.Role, d)
		}
	}
	if d := CanPerform(superadmin, ActionPromote, res); !d.Allowed {
		t.Fatalf("expected superadmin to promote, got %+v", d)
	}
}

func TestAdminCannotDemoteSuperadmin(t *testing.T) {
	res := Resource{Kind: KindEmployee, TargetID: "sa2", TargetCurrentRole: "superadmin", TargetRole: "employee"}
	if d := CanPerform(admin, ActionPromote, res); d.Allowed || d.Reason != apperr.ReasonRoleEscalationDenied {
		t.Fatalf("expected escalation denial, got %+v", d)
	}
}

func TestAdminPromotesToManager(t *testing.T) {
	res := Resource{Kind: KindEmployee, TargetID: "e1", TargetCurrentRole: "employee", TargetRole: "manager"}
	if d := CanPerform(admin, ActionPromote, res); !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
	if d := CanPerform(manager, ActionPromote, Resource{Kind: KindEmployee, TargetID: "e2", TargetManagedBy: "m1", TargetRole: "manager"}); d.Allowed || d.Reason != apperr.ReasonRoleEscalationDenied {
		t.Fatalf("expected managers to be denied promotion, got %+v", d)
	}
}

func TestManagerEmployeeScope(t *testing.T) {
	cases := []struct {
		name   string
		res    Resource
		allow  bool
		reason string
	}{
		{"department member but not a direct report", Resource{Kind: KindEmployee, TargetID: employeeE.ID, TargetManagedBy: employeeE.ManagedBy, TargetDepartmentID: "eng"}, false, apperr.ReasonNotOwner},
		{"direct report", Resource{Kind: KindEmployee, TargetID: reportR.ID, TargetManagedBy: "m1"}, true, ""},
		{"self", Resource{Kind: KindEmployee, TargetID: "m1"}, true, ""},
	}
	for _, tc := range cases {
		d := CanPerform(manager, ActionUpdate, tc.res)
		if d.Allowed != tc.allow || d.Reason != tc.reason {
			t.Fatalf("%s: got %+v", tc.name, d)
		}
	}
}

func TestEmployeeReadsOnlySelf(t *testing.T) {
	if d := CanPerform(employeeE, ActionRead, Resource{Kind: KindEmployee, TargetID: "e1"}); !d.Allowed {
		t.Fatalf("expected self read, got %+v", d)
	}
	if d := CanPerform(employeeE, ActionUpdate, Resource{Kind: KindEmployee, TargetID: "e1"}); d.Allowed || d.Reason != apperr.ReasonInsufficientRole {
		t.Fatalf("expected insufficient role, got %+v", d)
	}
}

func TestDepartmentRequiresManagedDepartment(t *testing.T) {
	if d := CanPerform(manager, ActionUpdate, Resource{Kind: KindDepartment, DepartmentID: "eng"}); !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
	if d := CanPerform(manager, ActionUpdate, Resource{Kind: KindDepartment, DepartmentID: "sales"}); d.Reason != apperr.ReasonNotOwner {
		t.Fatalf("expected not owner, got %+v", d)
	}
}

func TestReviewParticipants(t *testing.T) {
	review := Resource{Kind: KindReview, ID: "r1", EmployeeID: "e2", ReviewerID: "m1", AssignedByID: "ad"}
	cases := []struct {
		name   string
		actor  identity.Actor
		action Action
		allow  bool
		reason string
	}{
		{"reviewer edits", manager, ActionUpdate, true, ""},
		{"employee reads", reportR, ActionRead, true, ""},
		{"employee acknowledges", reportR, ActionAcknowledge, true, ""},
		{"employee edits", reportR, ActionUpdate, false, apperr.ReasonInsufficientRole},
		{"stranger reads", employeeE, ActionRead, false, apperr.ReasonNotOwner},
		{"reviewer deletes", manager, ActionDelete, false, apperr.ReasonInsufficientRole},
		{"admin deletes", admin, ActionDelete, true, ""},
	}
	for _, tc := range cases {
		d := CanPerform(tc.actor, tc.action, review)
		if d.Allowed != tc.allow || d.Reason != tc.reason {
			t.Fatalf("%s: got %+v", tc.name, d)
		}
	}
}

func TestAssignAndStartAssignment(t *testing.T) {
	inDept := Resource{Kind: KindAssignment, EmployeeID: "e1", EmployeeManagedBy: "m2", EmployeeDeptID: "eng"}
	if d := CanPerform(manager, ActionAssign, inDept); !d.Allowed {
		t.Fatalf("expected manager to assign within managed department, got %+v", d)
	}
	outside := Resource{Kind: KindAssignment, EmployeeID: "x", EmployeeManagedBy: "m9", EmployeeDeptID: "sales"}
	if d := CanPerform(manager, ActionAssign, outside); d.Reason != apperr.ReasonNotOwner {
		t.Fatalf("expected not owner, got %+v", d)
	}
	if d := CanPerform(employeeE, ActionAssign, inDept); d.Reason != apperr.ReasonInsufficientRole {
		t.Fatalf("expected insufficient role, got %+v", d)
	}

	assignment := Resource{Kind: KindAssignment, EmployeeID: "e2", ReviewerID: "m1", AssignedByID: "ad"}
	if d := CanPerform(manager, ActionStartWorkflow, assignment); !d.Allowed {
		t.Fatalf("expected reviewer to start, got %+v", d)
	}
	if d := CanPerform(reportR, ActionStartWorkflow, assignment); d.Allowed {
		t.Fatalf("expected employee start to be denied")
	}
	if d := CanPerform(manager, ActionDelete, Resource{Kind: KindAssignment, AssignedByID: "m1"}); !d.Allowed {
		t.Fatalf("expected assigner delete, got %+v", d)
	}
}

func TestGoalOwnership(t *testing.T) {
	g := Resource{Kind: KindGoal, EmployeeID: "e2", EmployeeManagedBy: "m1", CreatedByID: "e2"}
	if d := CanPerform(reportR, ActionUpdate, g); !d.Allowed {
		t.Fatalf("expected owner update, got %+v", d)
	}
	if d := CanPerform(manager, ActionCreate, g); !d.Allowed {
		t.Fatalf("expected manager create, got %+v", d)
	}
	if d := CanPerform(manager, ActionDelete, g); d.Reason != apperr.ReasonNotOwner {
		t.Fatalf("expected not owner for manager delete, got %+v", d)
	}
	if d := CanPerform(employeeE, ActionRead, g); d.Reason != apperr.ReasonNotOwner {
		t.Fatalf("expected not owner, got %+v", d)
	}
}

func TestTemplateAndKPIRules(t *testing.T) {
	if d := CanPerform(employeeE, ActionRead, Resource{Kind: KindTemplate}); !d.Allowed {
		t.Fatal("expected everyone to read templates")
	}
	if d := CanPerform(employeeE, ActionCreate, Resource{Kind: KindTemplate}); d.Reason != apperr.ReasonInsufficientRole {
		t.Fatalf("expected insufficient role, got %+v", d)
	}
	if d := CanPerform(manager, ActionUpdate, Resource{Kind: KindTemplate, CreatedByID: "m9"}); d.Reason != apperr.ReasonNotOwner {
		t.Fatalf("expected not owner, got %+v", d)
	}
	if d := CanPerform(manager, ActionDelete, Resource{Kind: KindTemplate, CreatedByID: "m1"}); d.Allowed {
		t.Fatal("expected template delete to be admin only")
	}
	if d := CanPerform(manager, ActionCreate, Resource{Kind: KindKPI, DepartmentID: "eng"}); !d.Allowed {
		t.Fatalf("expected department kpi create, got %+v", d)
	}
	if d := CanPerform(manager, ActionCreate, Resource{Kind: KindKPI}); d.Reason != apperr.ReasonInsufficientRole {
		t.Fatalf("expected global kpi to be admin only, got %+v", d)
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	d := CanPerform(identity.Actor{ID: "x", Role: "intern"}, ActionRead, Resource{Kind: KindTemplate})
	if d.Allowed || d.Reason != apperr.ReasonInsufficientRole {
		t.Fatalf("expected insufficient role, got %+v", d)
	}
}

func TestDecisionErr(t *testing.T) {
	if err := allow().Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	err := deny(apperr.ReasonNotOwner).Err()
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindForbidden || e.Reason != apperr.ReasonNotOwner {
		t.Fatalf("unexpected error %v", err)
	}
}

package authz

import "hrperf/internal/domain/apperr"

type Action string

const (
	ActionRead          Action = "read"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionAssign        Action = "assign"
	ActionPromote       Action = "promote"
	ActionAcknowledge   Action = "acknowledge"
	ActionStartWorkflow Action = "start-workflow"
)

type ResourceKind string

const (
	KindDepartment ResourceKind = "department"
	KindEmployee   ResourceKind = "employee"
	KindReview     ResourceKind = "review"
	KindAssignment ResourceKind = "assignment"
	KindGoal       ResourceKind = "goal"
	KindTemplate   ResourceKind = "template"
	KindKPI        ResourceKind = "kpi"
)

// Resource describes the target of an action. Only the fields relevant to
// the resource kind need to be filled in.
type Resource struct {
	Kind ResourceKind
	ID   string

	// department and kpi
	DepartmentID string

	// employee
	TargetID           string
	TargetManagedBy    string
	TargetDepartmentID string
	TargetRole         string
	TargetCurrentRole  string

	// review, assignment and goal
	EmployeeID        string
	EmployeeManagedBy string
	EmployeeDeptID    string
	ReviewerID        string
	AssignedByID      string
	CreatedByID       string
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into a forbidden error; it returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.Forbidden(d.Reason, denialMessage(d.Reason))
}

func denialMessage(reason string) string {
	switch reason {
	case apperr.ReasonNotOwner:
		return "resource is outside the caller's scope"
	case apperr.ReasonRoleEscalationDenied:
		return "role cannot be granted by the caller"
	default:
		return "role does not permit this action"
	}
}

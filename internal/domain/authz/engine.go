// Package authz decides whether an actor may perform an action on a resource.
// CanPerform is pure: callers load whatever the descriptor needs beforehand.
package authz

import (
	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

// CanPerform evaluates the rules in order and returns the first match.
// A denial is a value, never an error.
func CanPerform(actor identity.Actor, action Action, res Resource) Decision {
	if action == ActionPromote && escalates(actor, res) {
		return deny(apperr.ReasonRoleEscalationDenied)
	}

	switch actor.Role {
	case identity.RoleSuperAdmin, identity.RoleAdmin:
		return allow()
	case identity.RoleManager, identity.RoleEmployee:
	default:
		return deny(apperr.ReasonInsufficientRole)
	}

	if action == ActionPromote {
		return deny(apperr.ReasonRoleEscalationDenied)
	}

	switch res.Kind {
	case KindDepartment:
		return department(actor, action, res)
	case KindEmployee:
		return employee(actor, action, res)
	case KindReview, KindAssignment:
		return reviewOrAssignment(actor, action, res)
	case KindGoal:
		return goal(actor, action, res)
	case KindTemplate:
		return template(actor, action, res)
	case KindKPI:
		return kpi(actor, action, res)
	}
	return deny(apperr.ReasonInsufficientRole)
}

// escalates reports whether the promotion would grant or strip a role the
// actor does not hold themselves.
func escalates(actor identity.Actor, res Resource) bool {
	target := identity.Role(res.TargetRole)
	if target == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin {
		return true
	}
	current := identity.Role(res.TargetCurrentRole)
	return current == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin
}

func department(actor identity.Actor, action Action, res Resource) Decision {
	if actor.Role == identity.RoleManager {
		if actor.Manages(res.DepartmentID) {
			return allow()
		}
		return deny(apperr.ReasonNotOwner)
	}
	if action == ActionRead && res.DepartmentID != "" && res.DepartmentID == actor.DepartmentID {
		return allow()
	}
	return deny(apperr.ReasonInsufficientRole)
}

// employee grants managers their direct reports only; sharing a managed
// department is not enough without the managedBy link.
func employee(actor identity.Actor, action Action, res Resource) Decision {
	self := res.TargetID != "" && res.TargetID == actor.ID
	if actor.Role == identity.RoleManager {
		if self || (res.TargetManagedBy != "" && res.TargetManagedBy == actor.ID) {
			return allow()
		}
		return deny(apperr.ReasonNotOwner)
	}
	if self && action == ActionRead {
		return allow()
	}
	return deny(apperr.ReasonInsufficientRole)
}

func reviewOrAssignment(actor identity.Actor, action Action, res Resource) Decision {
	switch action {
	case ActionAssign, ActionCreate:
		if actor.Role != identity.RoleManager {
			return deny(apperr.ReasonInsufficientRole)
		}
		if managesEmployee(actor, res) {
			return allow()
		}
		return deny(apperr.ReasonNotOwner)
	case ActionDelete:
		if res.Kind == KindAssignment && res.AssignedByID != "" && res.AssignedByID == actor.ID {
			return allow()
		}
		return deny(apperr.ReasonInsufficientRole)
	}

	if isParty(actor.ID, res.ReviewerID, res.AssignedByID) {
		return allow()
	}
	if res.EmployeeID != "" && res.EmployeeID == actor.ID {
		if action == ActionRead || action == ActionAcknowledge {
			return allow()
		}
		return deny(apperr.ReasonInsufficientRole)
	}
	return deny(apperr.ReasonNotOwner)
}

func goal(actor identity.Actor, action Action, res Resource) Decision {
	owner := res.EmployeeID != "" && res.EmployeeID == actor.ID
	manager := res.EmployeeManagedBy != "" && res.EmployeeManagedBy == actor.ID
	switch action {
	case ActionCreate:
		if owner || manager {
			return allow()
		}
	case ActionDelete:
		if owner || isParty(actor.ID, res.CreatedByID) {
			return allow()
		}
	case ActionRead, ActionUpdate:
		if owner || manager || isParty(actor.ID, res.ReviewerID, res.CreatedByID) {
			return allow()
		}
	default:
		return deny(apperr.ReasonInsufficientRole)
	}
	return deny(apperr.ReasonNotOwner)
}

func template(actor identity.Actor, action Action, res Resource) Decision {
	switch action {
	case ActionRead:
		return allow()
	case ActionCreate:
		if actor.Role == identity.RoleManager {
			return allow()
		}
	case ActionUpdate:
		if actor.Role == identity.RoleManager {
			if isParty(actor.ID, res.CreatedByID) {
				return allow()
			}
			return deny(apperr.ReasonNotOwner)
		}
	}
	return deny(apperr.ReasonInsufficientRole)
}

func kpi(actor identity.Actor, action Action, res Resource) Decision {
	switch action {
	case ActionRead:
		return allow()
	case ActionCreate, ActionUpdate:
		if actor.Role != identity.RoleManager || res.DepartmentID == "" {
			return deny(apperr.ReasonInsufficientRole)
		}
		if actor.Manages(res.DepartmentID) {
			return allow()
		}
		return deny(apperr.ReasonNotOwner)
	}
	return deny(apperr.ReasonInsufficientRole)
}

func managesEmployee(actor identity.Actor, res Resource) bool {
	if res.EmployeeManagedBy != "" && res.EmployeeManagedBy == actor.ID {
		return true
	}
	return actor.Manages(res.EmployeeDeptID)
}

func isParty(actorID string, ids ...string) bool {
	for _, id := range ids {
		if id != "" && id == actorID {
			return true
		}
	}
	return false
}

// Package org manages who reports to whom: roles, activation and department heads.
package org

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
)

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type Service struct {
	store    identity.StoreAPI
	notifier notifications.Sender
	auditor  Auditor
	hash     func(string) (string, error)
	now      func() time.Time
}

func NewService(store identity.StoreAPI, notifier notifications.Sender, auditor Auditor) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		auditor:  auditor,
		hash:     auth.HashPassword,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func employeeResource(target identity.Actor) authz.Resource {
	return authz.Resource{
		Kind:               authz.KindEmployee,
		ID:                 target.ID,
		TargetID:           target.ID,
		TargetManagedBy:    target.ManagedBy,
		TargetDepartmentID: target.DepartmentID,
		TargetCurrentRole:  string(target.Role),
	}
}

func (s *Service) GetEmployee(ctx context.Context, actor identity.Actor, id string) (identity.Actor, error) {
	target, err := s.store.GetActor(ctx, id)
	if err != nil {
		return identity.Actor{}, err
	}
	if err := authz.CanPerform(actor, authz.ActionRead, employeeResource(target)).Err(); err != nil {
		return identity.Actor{}, err
	}
	return target, nil
}

type EmployeeInput struct {
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Role         identity.Role `json:"role"`
	DepartmentID string        `json:"departmentId"`
	ManagedBy    string        `json:"managedBy"`
}

// CreateEmployee registers a new account. Admins create accounts; only a
// superadmin creates another superadmin.
func (s *Service) CreateEmployee(ctx context.Context, actor identity.Actor, in EmployeeInput) (identity.Actor, error) {
	if !actor.Role.IsAdmin() {
		return identity.Actor{}, apperr.Forbidden(apperr.ReasonInsufficientRole, "only admins may create accounts")
	}
	if in.Role == "" {
		in.Role = identity.RoleEmployee
	}
	v := apperr.NewValidator()
	v.Required("email", in.Email)
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		v.Add("email", "must be an email address")
	}
	v.Required("firstName", in.FirstName)
	if len(in.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if !in.Role.Valid() {
		v.Add("role", "must be one of employee, manager, admin, superadmin")
	}
	if err := v.Err(); err != nil {
		return identity.Actor{}, err
	}
	if in.Role == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin {
		return identity.Actor{}, apperr.Forbidden(apperr.ReasonRoleEscalationDenied, "only a superadmin may create a superadmin")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.store.FindCredentials(ctx, email); err == nil {
		return identity.Actor{}, apperr.Validation(apperr.FieldIssue{Field: "email", Reason: "is already registered"})
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return identity.Actor{}, err
	}
	if in.DepartmentID != "" {
		if _, err := s.store.GetDepartment(ctx, in.DepartmentID); err != nil {
			return identity.Actor{}, err
		}
	}
	if in.ManagedBy != "" {
		if _, err := s.store.GetActor(ctx, in.ManagedBy); err != nil {
			return identity.Actor{}, err
		}
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return identity.Actor{}, err
	}
	created, err := s.store.CreateActor(ctx, identity.Actor{
		ID:                 uuid.NewString(),
		Email:              email,
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Role:               in.Role,
		DepartmentID:       in.DepartmentID,
		ManagedDepartments: []string{},
		ManagedBy:          in.ManagedBy,
		Active:             true,
		CreatedAt:          s.now(),
	}, hash)
	if err != nil {
		return identity.Actor{}, err
	}
	s.audit(ctx, actor, "employee.create", "employee", created.ID, nil, created)
	return created, nil
}

// ListEmployees returns everyone for admins, direct reports and department
// members for managers, and only themselves for employees.
func (s *Service) ListEmployees(ctx context.Context, actor identity.Actor, filter identity.ActorFilter) ([]identity.Actor, error) {
	if actor.Role.IsAdmin() {
		return s.store.ListActors(ctx, filter)
	}
	if actor.Role != identity.RoleManager {
		return []identity.Actor{actor}, nil
	}
	all, err := s.store.ListActors(ctx, filter)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(a identity.Actor) bool {
		return a.ID != actor.ID && a.ManagedBy != actor.ID && !actor.Manages(a.DepartmentID)
	}), nil
}

// DirectReports lists the active actors whose managedBy is managerID.
func (s *Service) DirectReports(ctx context.Context, actor identity.Actor, managerID string) ([]identity.Actor, error) {
	if _, err := s.GetEmployee(ctx, actor, managerID); err != nil {
		return nil, err
	}
	return s.store.ListActors(ctx, identity.ActorFilter{ManagedBy: managerID, ActiveOnly: true})
}

func (s *Service) ListDepartments(ctx context.Context) ([]identity.Department, error) {
	return s.store.ListDepartments(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, actor identity.Actor, name, description string) (identity.Department, error) {
	if err := authz.CanPerform(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindDepartment}).Err(); err != nil {
		return identity.Department{}, err
	}
	v := apperr.NewValidator()
	v.Required("name", name)
	if err := v.Err(); err != nil {
		return identity.Department{}, err
	}
	dept := identity.Department{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	created, err := s.store.CreateDepartment(ctx, dept)
	if err != nil {
		return identity.Department{}, err
	}
	s.audit(ctx, actor, "department.create", "department", created.ID, nil, created)
	return created, nil
}

// ChangeRole promotes or demotes target. Nobody changes their own role, and
// only a superadmin grants or removes superadmin.
func (s *Service) ChangeRole(ctx context.Context, actor identity.Actor, targetID string, role identity.Role) (identity.Actor, error) {
	if !role.Valid() {
		return identity.Actor{}, apperr.Validation(apperr.FieldIssue{Field: "role", Reason: "must be one of employee, manager, admin, superadmin"})
	}
	if targetID == actor.ID {
		return identity.Actor{}, apperr.Forbidden(apperr.ReasonRoleEscalationDenied, "actors cannot change their own role")
	}
	var before identity.Actor
	updated, err := s.store.UpdateActor(ctx, targetID, func(target *identity.Actor) error {
		before = *target
		res := employeeResource(*target)
		res.TargetRole = string(role)
		if err := authz.CanPerform(actor, authz.ActionPromote, res).Err(); err != nil {
			return err
		}
		target.Role = role
		if role == identity.RoleEmployee {
			target.ManagedDepartments = []string{}
		}
		return nil
	})
	if err != nil {
		return identity.Actor{}, err
	}
	if updated.Role == identity.RoleEmployee {
		if err := s.releaseHeadships(ctx, actor, targetID); err != nil {
			return identity.Actor{}, err
		}
	}
	s.audit(ctx, actor, "employee.role", "employee", targetID, before.Role, updated.Role)
	if before.Role != updated.Role {
		s.notify(ctx, targetID, notifications.KindRoleChanged, map[string]any{
			"previousRole": string(before.Role),
			"role":         string(updated.Role),
		})
	}
	return updated, nil
}

// releaseHeadships clears the head of every department headed by actorID.
func (s *Service) releaseHeadships(ctx context.Context, actor identity.Actor, actorID string) error {
	depts, err := s.store.ListDepartments(ctx)
	if err != nil {
		return err
	}
	for _, d := range depts {
		if d.HeadID != actorID {
			continue
		}
		_, err := s.store.UpdateDepartment(ctx, d.ID, func(dept *identity.Department) error {
			if dept.HeadID == actorID {
				dept.HeadID = ""
			}
			return nil
		})
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		s.audit(ctx, actor, "department.head", "department", d.ID, actorID, "")
	}
	return nil
}

// Deactivate blocks target from acting. Deactivated actors fail identity
// resolution on their next request.
func (s *Service) Deactivate(ctx context.Context, actor identity.Actor, targetID string) (identity.Actor, error) {
	if !actor.Role.IsAdmin() {
		return identity.Actor{}, apperr.Forbidden(apperr.ReasonInsufficientRole, "only admins may deactivate accounts")
	}
	if targetID == actor.ID {
		return identity.Actor{}, apperr.Forbidden(apperr.ReasonNotOwner, "actors cannot deactivate themselves")
	}
	updated, err := s.store.UpdateActor(ctx, targetID, func(target *identity.Actor) error {
		if target.Role == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin {
			return apperr.Forbidden(apperr.ReasonRoleEscalationDenied, "only a superadmin may deactivate a superadmin")
		}
		target.Active = false
		return nil
	})
	if err != nil {
		return identity.Actor{}, err
	}
	s.audit(ctx, actor, "employee.deactivate", "employee", targetID, true, false)
	return updated, nil
}

// SetDepartmentHead makes managerID the head of deptID and adds the department
// to their managed departments. The previous head loses it.
func (s *Service) SetDepartmentHead(ctx context.Context, actor identity.Actor, deptID, managerID string) (identity.Department, error) {
	if !actor.Role.IsAdmin() {
		return identity.Department{}, apperr.Forbidden(apperr.ReasonInsufficientRole, "only admins may set department heads")
	}
	dept, err := s.store.GetDepartment(ctx, deptID)
	if err != nil {
		return identity.Department{}, err
	}
	manager, err := s.store.GetActor(ctx, managerID)
	if err != nil {
		return identity.Department{}, err
	}
	if manager.Role.Rank() < identity.RoleManager.Rank() {
		return identity.Department{}, apperr.Validation(apperr.FieldIssue{Field: "managerId", Reason: "must hold the manager role or above"})
	}
	if !manager.Active {
		return identity.Department{}, apperr.Validation(apperr.FieldIssue{Field: "managerId", Reason: "is deactivated"})
	}

	if _, err := s.store.UpdateActor(ctx, managerID, func(a *identity.Actor) error {
		if !slices.Contains(a.ManagedDepartments, deptID) {
			a.ManagedDepartments = append(a.ManagedDepartments, deptID)
		}
		return nil
	}); err != nil {
		return identity.Department{}, err
	}
	if dept.HeadID != "" && dept.HeadID != managerID {
		_, err := s.store.UpdateActor(ctx, dept.HeadID, func(a *identity.Actor) error {
			a.ManagedDepartments = slices.DeleteFunc(a.ManagedDepartments, func(id string) bool { return id == deptID })
			return nil
		})
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return identity.Department{}, err
		}
	}
	updated, err := s.store.UpdateDepartment(ctx, deptID, func(d *identity.Department) error {
		d.HeadID = managerID
		return nil
	})
	if err != nil {
		return identity.Department{}, err
	}
	s.audit(ctx, actor, "department.head", "department", deptID, dept.HeadID, managerID)
	return updated, nil
}

func (s *Service) audit(ctx context.Context, actor identity.Actor, action, entityType, entityID string, before, after any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, actor.ID, action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "id", entityID, "err", err)
	}
}

func (s *Service) notify(ctx context.Context, recipientID, kind string, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, recipientID, kind, payload); err != nil {
		slog.Warn("org notification failed", "kind", kind, "recipientId", recipientID, "err", err)
	}
}

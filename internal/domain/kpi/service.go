package kpi

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
)

type Directory interface {
	Get(ctx context.Context, id string) (identity.Actor, error)
}

type Departments interface {
	GetDepartment(ctx context.Context, id string) (identity.Department, error)
}

type Service struct {
	store       StoreAPI
	directory   Directory
	departments Departments
}

func NewService(store StoreAPI, directory Directory, departments Departments) *Service {
	return &Service{store: store, directory: directory, departments: departments}
}

func validate(in Input) error {
	v := apperr.NewValidator()
	v.Required("title", in.Title)
	v.Required("target", in.Target)
	v.Required("category", string(in.Category))
	v.OneOf("category", string(in.Category), Categories...)
	v.OneOf("frequency", in.Frequency, Frequencies...)
	v.OneOf("status", string(in.Status), Statuses...)
	if in.StartDate != nil && in.EndDate != nil {
		v.DateOrder("startDate", *in.StartDate, "endDate", *in.EndDate)
	}
	if !in.IsGlobal && strings.TrimSpace(in.DepartmentID) == "" {
		v.Add("departmentId", "is required unless the KPI is global")
	}
	return v.Err()
}

func resource(k KPI) authz.Resource {
	dept := k.DepartmentID
	if k.IsGlobal {
		dept = ""
	}
	return authz.Resource{Kind: authz.KindKPI, ID: k.ID, DepartmentID: dept, CreatedByID: k.CreatedByID}
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, in Input) (KPI, error) {
	if err := validate(in); err != nil {
		return KPI{}, err
	}
	now := time.Now().UTC()
	k := KPI{
		ID:          uuid.NewString(),
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		StartDate:   now,
	}
	apply(&k, in)
	if err := authz.CanPerform(actor, authz.ActionCreate, resource(k)).Err(); err != nil {
		return KPI{}, err
	}
	if k.DepartmentID != "" {
		if _, err := s.departments.GetDepartment(ctx, k.DepartmentID); err != nil {
			return KPI{}, err
		}
	}
	return s.store.CreateKPI(ctx, k)
}

func apply(k *KPI, in Input) {
	k.Title = strings.TrimSpace(in.Title)
	k.Description = strings.TrimSpace(in.Description)
	k.Category = in.Category
	k.Target = strings.TrimSpace(in.Target)
	k.TargetValue = in.TargetValue
	k.Unit = strings.TrimSpace(in.Unit)
	k.Frequency = in.Frequency
	if k.Frequency == "" {
		k.Frequency = "Quarterly"
	}
	k.IsGlobal = in.IsGlobal
	k.DepartmentID = in.DepartmentID
	if in.IsGlobal {
		k.DepartmentID = ""
	}
	if in.StartDate != nil {
		k.StartDate = *in.StartDate
	}
	k.EndDate = in.EndDate
	k.Status = in.Status
	if k.Status == "" {
		k.Status = StatusActive
	}
}

func (s *Service) Get(ctx context.Context, actor identity.Actor, id string) (KPI, error) {
	k, err := s.store.GetKPI(ctx, id)
	if err != nil {
		return KPI{}, err
	}
	if err := authz.CanPerform(actor, authz.ActionRead, resource(k)).Err(); err != nil {
		return KPI{}, err
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, actor identity.Actor, filter Filter) ([]KPI, error) {
	if err := authz.CanPerform(actor, authz.ActionRead, authz.Resource{Kind: authz.KindKPI}).Err(); err != nil {
		return nil, err
	}
	return s.store.ListKPIs(ctx, filter)
}

// ListForEmployee returns the active KPIs that apply to an employee: global
// ones plus those of the employee's department.
func (s *Service) ListForEmployee(ctx context.Context, actor identity.Actor, employeeID string) ([]KPI, error) {
	employee, err := s.directory.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{Kind: authz.KindEmployee, TargetID: employee.ID, TargetManagedBy: employee.ManagedBy, TargetDepartmentID: employee.DepartmentID}
	if err := authz.CanPerform(actor, authz.ActionRead, res).Err(); err != nil {
		return nil, err
	}
	return s.store.ListKPIs(ctx, Filter{DepartmentID: employee.DepartmentID, IncludeGlobal: true, Status: StatusActive})
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, id string, in Input) (KPI, error) {
	if err := validate(in); err != nil {
		return KPI{}, err
	}
	return s.store.UpdateKPI(ctx, id, func(k *KPI) error {
		if err := authz.CanPerform(actor, authz.ActionUpdate, resource(*k)).Err(); err != nil {
			return err
		}
		apply(k, in)
		if err := authz.CanPerform(actor, authz.ActionUpdate, resource(*k)).Err(); err != nil {
			return err
		}
		k.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	k, err := s.store.GetKPI(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanPerform(actor, authz.ActionDelete, resource(k)).Err(); err != nil {
		return err
	}
	return s.store.DeleteKPI(ctx, id)
}

package kpi_test

import (
	"context"
	"testing"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/kpi"
	"hrperf/internal/platform/memstore"
)

func setup(t *testing.T) (*kpi.Service, map[string]identity.Actor) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	for _, id := range []string{"d1", "d2"} {
		if _, err := store.CreateDepartment(ctx, identity.Department{ID: id, Name: id, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("seed department: %v", err)
		}
	}
	actors := map[string]identity.Actor{}
	for _, a := range []identity.Actor{
		{ID: "a1", Role: identity.RoleAdmin},
		{ID: "m1", Role: identity.RoleManager, DepartmentID: "d1", ManagedDepartments: []string{"d1"}},
		{ID: "e1", Role: identity.RoleEmployee, DepartmentID: "d1", ManagedBy: "m1"},
	} {
		a.Active = true
		a.Email = a.ID + "@example.com"
		created, err := store.CreateActor(ctx, a, "")
		if err != nil {
			t.Fatalf("seed actor: %v", err)
		}
		actors[a.ID] = created
	}
	return kpi.NewService(store, identity.NewService(store), store), actors
}

func TestManagerScopedToManagedDepartments(t *testing.T) {
	svc, actors := setup(t)
	ctx := context.Background()
	m1 := actors["m1"]

	created, err := svc.Create(ctx, m1, kpi.Input{Title: "Deploys", Target: "20/month", Category: kpi.CategoryPerformance, DepartmentID: "d1"})
	if err != nil {
		t.Fatalf("create department kpi: %v", err)
	}
	if created.Status != kpi.StatusActive || created.Frequency != "Quarterly" {
		t.Fatalf("expected defaults applied, got %+v", created)
	}

	_, err = svc.Create(ctx, m1, kpi.Input{Title: "Other", Target: "1", Category: kpi.CategoryTeam, DepartmentID: "d2"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for unmanaged department, got %v", err)
	}
	_, err = svc.Create(ctx, m1, kpi.Input{Title: "Global", Target: "1", Category: kpi.CategoryTeam, IsGlobal: true})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for global kpi, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc, actors := setup(t)
	_, err := svc.Create(context.Background(), actors["a1"], kpi.Input{Category: "Vibes"})
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range e.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "target", "category", "departmentId"} {
		if !fields[want] {
			t.Fatalf("expected issue for %s, got %+v", want, e.Fields)
		}
	}
}

func TestListForEmployeeCombinesGlobalAndDepartment(t *testing.T) {
	svc, actors := setup(t)
	ctx := context.Background()
	admin := actors["a1"]
	inputs := []kpi.Input{
		{Title: "NPS", Target: "40", Category: kpi.CategoryCustomer, IsGlobal: true},
		{Title: "Deploys", Target: "20", Category: kpi.CategoryPerformance, DepartmentID: "d1"},
		{Title: "Margin", Target: "30%", Category: kpi.CategoryFinancial, DepartmentID: "d2"},
		{Title: "Retired", Target: "1", Category: kpi.CategoryTeam, DepartmentID: "d1", Status: kpi.StatusArchived},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, admin, in); err != nil {
			t.Fatalf("create %s: %v", in.Title, err)
		}
	}
	got, err := svc.ListForEmployee(ctx, actors["e1"], "e1")
	if err != nil {
		t.Fatalf("list for employee: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 kpis, got %+v", got)
	}
	titles := map[string]bool{got[0].Title: true, got[1].Title: true}
	if !titles["NPS"] || !titles["Deploys"] {
		t.Fatalf("unexpected kpis: %+v", got)
	}
}

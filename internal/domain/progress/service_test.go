package progress_test

import (
	"context"
	"testing"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/progress"
	"hrperf/internal/platform/memstore"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *progress.Service
	manager  identity.Actor
	employee identity.Actor
	peer     identity.Actor
	admin    identity.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	seed := func(a identity.Actor) identity.Actor {
		a.Active = true
		a.Email = a.ID + "@example.com"
		a.CreatedAt = now
		created, err := store.CreateActor(ctx, a, "")
		if err != nil {
			t.Fatalf("seed actor: %v", err)
		}
		return created
	}
	f := fixture{
		manager:  seed(identity.Actor{ID: "m1", Role: identity.RoleManager, DepartmentID: "d1"}),
		employee: seed(identity.Actor{ID: "e1", Role: identity.RoleEmployee, DepartmentID: "d1", ManagedBy: "m1"}),
		peer:     seed(identity.Actor{ID: "e2", Role: identity.RoleEmployee, DepartmentID: "d1"}),
		admin:    seed(identity.Actor{ID: "a1", Role: identity.RoleAdmin}),
	}
	f.svc = progress.NewService(store, identity.NewService(store), nil).WithClock(func() time.Time { return now })
	return f
}

func TestCreateRecordsInitialHistory(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Create(context.Background(), f.manager, progress.CreateInput{EmployeeID: "e1", Title: "Ship onboarding"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if view.Status != progress.StatusNotStarted || len(view.ProgressHistory) != 1 {
		t.Fatalf("expected Not Started with one history entry, got %s/%d", view.Status, len(view.ProgressHistory))
	}
	if view.Cycle != progress.CycleMonthly {
		t.Fatalf("expected default cycle Monthly, got %s", view.Cycle)
	}
}

func TestRecordProgressAppendsEveryUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.employee, progress.CreateInput{EmployeeID: "e1", Title: "Certification"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.svc.RecordProgress(ctx, f.manager, view.ID, progress.RecordInput{Progress: 45}); err != nil {
			t.Fatalf("record progress: %v", err)
		}
	}
	got, err := f.svc.Get(ctx, f.employee, view.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if len(got.ProgressHistory) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(got.ProgressHistory))
	}
	if got.ProgressHistory[2].UpdatedBy != "m1" {
		t.Fatalf("expected last update by m1, got %s", got.ProgressHistory[2].UpdatedBy)
	}
}

func TestRejectedProgressLeavesGoalUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.employee, progress.CreateInput{EmployeeID: "e1", Title: "Certification"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := f.svc.RecordProgress(ctx, f.employee, view.ID, progress.RecordInput{Progress: 140}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := f.svc.Get(ctx, f.employee, view.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if len(got.ProgressHistory) != 1 || got.Progress != 0 {
		t.Fatalf("expected goal untouched, got progress %v with %d entries", got.Progress, len(got.ProgressHistory))
	}
}

func TestPeerCannotTouchGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.manager, progress.CreateInput{EmployeeID: "e1", Title: "Mentoring"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.peer, view.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden read, got %v", err)
	}
	if _, err := f.svc.RecordProgress(ctx, f.peer, view.ID, progress.RecordInput{Progress: 10}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if _, err := f.svc.Create(ctx, f.peer, progress.CreateInput{EmployeeID: "e1", Title: "Sneaky"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden create, got %v", err)
	}
}

func TestPrivateGoalHiddenFromManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.employee, progress.CreateInput{EmployeeID: "e1", Title: "Private", IsPrivate: true})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.manager, view.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden read of private goal, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.admin, view.ID); err != nil {
		t.Fatalf("admin should read private goal: %v", err)
	}
	goals, err := f.svc.List(ctx, f.manager, progress.Filter{EmployeeID: "e1"})
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 0 {
		t.Fatalf("expected private goal filtered out, got %d goals", len(goals))
	}
	if _, err := f.svc.RecordProgress(ctx, f.manager, view.ID, progress.RecordInput{Progress: 50}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden progress on private goal, got %v", err)
	}
	title := "Exposed"
	if _, err := f.svc.Update(ctx, f.manager, view.ID, progress.PatchInput{Title: &title}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden edit of private goal, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.manager, view.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden delete of private goal, got %v", err)
	}
	got, err := f.svc.Get(ctx, f.employee, view.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Title != "Private" || len(got.ProgressHistory) != 1 {
		t.Fatalf("private goal changed: %q with %d entries", got.Title, len(got.ProgressHistory))
	}
}

func TestEmployeeListIsScopedToSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, f.employee, progress.CreateInput{EmployeeID: "e1", Title: "Mine"}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.peer, progress.CreateInput{EmployeeID: "e2", Title: "Theirs"}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	goals, err := f.svc.List(ctx, f.employee, progress.Filter{EmployeeID: "e2"})
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 || goals[0].EmployeeID != "e1" {
		t.Fatalf("expected only own goal, got %+v", goals)
	}
}

func TestUpdatePinsAtRiskThroughPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.manager, progress.CreateInput{EmployeeID: "e1", Title: "Launch", Progress: 30})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	atRisk := progress.StatusAtRisk
	updated, err := f.svc.Update(ctx, f.manager, view.ID, progress.PatchInput{Status: &atRisk})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.Status != progress.StatusAtRisk || updated.Progress != 30 {
		t.Fatalf("expected At Risk at 30, got %s at %v", updated.Status, updated.Progress)
	}
	next, err := f.svc.RecordProgress(ctx, f.manager, view.ID, progress.RecordInput{Progress: 60})
	if err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if next.Status != progress.StatusAtRisk {
		t.Fatalf("expected At Risk to stick, got %s", next.Status)
	}
	title := "Renamed"
	renamed, err := f.svc.Update(ctx, f.manager, view.ID, progress.PatchInput{Title: &title})
	if err != nil {
		t.Fatalf("rename goal: %v", err)
	}
	if len(renamed.ProgressHistory) != 3 {
		t.Fatalf("title edit must not add history, got %d entries", len(renamed.ProgressHistory))
	}
}

func TestRecordProgressReturnsOnSharedStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.svc.Create(ctx, f.admin, progress.CreateInput{EmployeeID: "e1", Title: "Roadmap"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	done := make(chan error, 2)
	go func() {
		_, err := f.svc.RecordProgress(ctx, f.manager, view.ID, progress.RecordInput{Progress: 45})
		done <- err
	}()
	go func() {
		value := 55.0
		_, err := f.svc.Update(ctx, f.admin, view.ID, progress.PatchInput{Progress: &value})
		done <- err
	}()
	timeout := time.After(3 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("update: %v", err)
			}
		case <-timeout:
			t.Fatal("goal update did not return")
		}
	}
}

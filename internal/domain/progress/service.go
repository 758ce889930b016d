package progress

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
)

type Directory interface {
	Get(ctx context.Context, id string) (identity.Actor, error)
}

type Service struct {
	store     StoreAPI
	directory Directory
	notifier  notifications.Sender
	now       func() time.Time
}

func NewService(store StoreAPI, directory Directory, notifier notifications.Sender) *Service {
	return &Service{
		store:     store,
		directory: directory,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RecordInput struct {
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
	Notes    string  `json:"notes"`
}

// owner loads the goal's employee so authorization can run without touching
// the store. A dangling employee yields the zero Actor.
func (s *Service) owner(ctx context.Context, employeeID string) (identity.Actor, error) {
	employee, err := s.directory.Get(ctx, employeeID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return identity.Actor{}, nil
		}
		return identity.Actor{}, err
	}
	return employee, nil
}

func resource(g Goal, owner identity.Actor) authz.Resource {
	return authz.Resource{
		Kind:              authz.KindGoal,
		ID:                g.ID,
		EmployeeID:        g.EmployeeID,
		ReviewerID:        g.ReviewerID,
		CreatedByID:       g.CreatedByID,
		EmployeeManagedBy: owner.ManagedBy,
		EmployeeDeptID:    owner.DepartmentID,
	}
}

// permit is pure so it can run inside store callbacks. Private goals are
// closed to everyone but their owner, creator and admins for every action
// except create.
func permit(actor identity.Actor, action authz.Action, g Goal, owner identity.Actor) error {
	if err := authz.CanPerform(actor, action, resource(g, owner)).Err(); err != nil {
		return err
	}
	if action != authz.ActionCreate && g.IsPrivate && !canSeePrivate(actor, g) {
		return apperr.Forbidden(apperr.ReasonNotOwner, "goal is private")
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, actor identity.Actor, action authz.Action, g Goal) error {
	owner, err := s.owner(ctx, g.EmployeeID)
	if err != nil {
		return err
	}
	return permit(actor, action, g, owner)
}

// mutate authorizes against the current goal, then reapplies the same pure
// check to the locked row before fn runs. The owner is loaded up front
// because fn runs under the store lock.
func (s *Service) mutate(ctx context.Context, actor identity.Actor, id string, fn func(*Goal) error) (Goal, error) {
	current, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	owner, err := s.owner(ctx, current.EmployeeID)
	if err != nil {
		return Goal{}, err
	}
	if err := permit(actor, authz.ActionUpdate, current, owner); err != nil {
		return Goal{}, err
	}
	return s.store.MutateGoal(ctx, id, func(g *Goal) error {
		if err := permit(actor, authz.ActionUpdate, *g, owner); err != nil {
			return err
		}
		return fn(g)
	})
}

func canSeePrivate(actor identity.Actor, g Goal) bool {
	return actor.Role.IsAdmin() || actor.ID == g.EmployeeID || actor.ID == g.CreatedByID
}

func validateCreate(in CreateInput) error {
	v := apperr.NewValidator()
	v.Required("title", in.Title)
	v.Required("employeeId", in.EmployeeID)
	v.OneOf("cycle", string(in.Cycle), Cycles...)
	v.OneOf("status", string(in.Status), Statuses...)
	v.Range("progress", in.Progress, 0, 100)
	return v.Err()
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, in CreateInput) (View, error) {
	if err := validateCreate(in); err != nil {
		return View{}, err
	}
	if _, err := s.directory.Get(ctx, in.EmployeeID); err != nil {
		return View{}, err
	}
	if in.ReviewerID != "" {
		if _, err := s.directory.Get(ctx, in.ReviewerID); err != nil {
			return View{}, err
		}
	}
	now := s.now()
	cycle := in.Cycle
	if cycle == "" {
		cycle = CycleMonthly
	}
	g := Goal{
		ID:          uuid.NewString(),
		EmployeeID:  in.EmployeeID,
		ReviewerID:  in.ReviewerID,
		ReviewID:    in.ReviewID,
		KPIID:       in.KPIID,
		CreatedByID: actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Notes:       in.Notes,
		Cycle:       cycle,
		IsPrivate:   in.IsPrivate,
		TargetDate:  in.TargetDate,
		CreatedAt:   now,
	}
	if err := s.authorize(ctx, actor, authz.ActionCreate, g); err != nil {
		return View{}, err
	}
	if _, err := Record(&g, Update{Progress: in.Progress, Status: in.Status, UpdatedBy: actor.ID, Notes: in.Notes, At: now}); err != nil {
		return View{}, err
	}
	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return View{}, err
	}
	if created.EmployeeID != actor.ID {
		s.notify(ctx, created.EmployeeID, notifications.KindGoalCreated, created)
	}
	return NewView(created, now), nil
}

func (s *Service) Get(ctx context.Context, actor identity.Actor, id string) (View, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.authorize(ctx, actor, authz.ActionRead, g); err != nil {
		return View{}, err
	}
	return NewView(g, s.now()), nil
}

// List returns the goals matching filter that the actor may read.
func (s *Service) List(ctx context.Context, actor identity.Actor, filter Filter) ([]View, error) {
	if actor.Role == identity.RoleEmployee {
		filter.EmployeeID = actor.ID
	}
	goals, err := s.store.ListGoals(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]View, 0, len(goals))
	for _, g := range goals {
		if err := s.authorize(ctx, actor, authz.ActionRead, g); err != nil {
			if apperr.Is(err, apperr.KindForbidden) {
				continue
			}
			return nil, err
		}
		out = append(out, NewView(g, now))
	}
	return out, nil
}

// RecordProgress appends a progress entry to the goal.
func (s *Service) RecordProgress(ctx context.Context, actor identity.Actor, id string, in RecordInput) (View, error) {
	updated, err := s.mutate(ctx, actor, id, func(g *Goal) error {
		_, err := Record(g, Update{Progress: in.Progress, Status: in.Status, UpdatedBy: actor.ID, Notes: in.Notes, At: s.now()})
		return err
	})
	if err != nil {
		return View{}, err
	}
	if updated.EmployeeID != actor.ID {
		s.notify(ctx, updated.EmployeeID, notifications.KindGoalUpdated, updated)
	}
	return NewView(updated, s.now()), nil
}

func validatePatch(p PatchInput) error {
	v := apperr.NewValidator()
	if p.Title != nil {
		v.Required("title", *p.Title)
	}
	if p.Cycle != nil {
		v.OneOf("cycle", string(*p.Cycle), Cycles...)
	}
	if p.Progress != nil {
		v.Range("progress", *p.Progress, 0, 100)
	}
	if p.Status != nil {
		v.OneOf("status", string(*p.Status), Statuses...)
	}
	return v.Err()
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, id string, patch PatchInput) (View, error) {
	if err := validatePatch(patch); err != nil {
		return View{}, err
	}
	updated, err := s.mutate(ctx, actor, id, func(g *Goal) error {
		applyPatch(g, patch)
		g.UpdatedAt = s.now()
		if patch.Progress == nil && patch.Status == nil {
			return nil
		}
		u := Update{Progress: g.Progress, UpdatedBy: actor.ID, At: g.UpdatedAt}
		if patch.Progress != nil {
			u.Progress = *patch.Progress
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
		_, err := Record(g, u)
		return err
	})
	if err != nil {
		return View{}, err
	}
	return NewView(updated, s.now()), nil
}

func applyPatch(g *Goal, p PatchInput) {
	if p.Title != nil {
		g.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		g.Description = strings.TrimSpace(*p.Description)
	}
	if p.Notes != nil {
		g.Notes = *p.Notes
	}
	if p.Cycle != nil {
		g.Cycle = *p.Cycle
	}
	if p.IsPrivate != nil {
		g.IsPrivate = *p.IsPrivate
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate
	}
	if p.ReviewerID != nil {
		g.ReviewerID = *p.ReviewerID
	}
	if p.KPIID != nil {
		g.KPIID = *p.KPIID
	}
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, authz.ActionDelete, g); err != nil {
		return err
	}
	return s.store.DeleteGoal(ctx, id)
}

func (s *Service) notify(ctx context.Context, recipientID, kind string, g Goal) {
	if s.notifier == nil {
		return
	}
	payload := map[string]any{"goalId": g.ID, "title": g.Title, "progress": g.Progress, "status": string(g.Status)}
	if err := s.notifier.Send(ctx, recipientID, kind, payload); err != nil {
		slog.Warn("goal notification failed", "goalId", g.ID, "err", err)
	}
}

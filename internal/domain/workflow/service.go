// Package workflow runs review templates, assignments and reviews through
// their lifecycles. Every operation takes the acting identity explicitly and
// consults authz before touching the store.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/domain/progress"
)

type Directory interface {
	Get(ctx context.Context, id string) (identity.Actor, error)
}

// GoalRecorder receives the goal updates embedded in a check-in.
type GoalRecorder interface {
	RecordProgress(ctx context.Context, actor identity.Actor, goalID string, in progress.RecordInput) (progress.View, error)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type TransitionCounter interface {
	RecordTransition(entity, action string)
}

type Service struct {
	store          StoreAPI
	directory      Directory
	goals          GoalRecorder
	notifier       notifications.Sender
	auditor        Auditor
	metrics        TransitionCounter
	now            func() time.Time
	checkInWorkers int
}

func NewService(store StoreAPI, directory Directory, goals GoalRecorder, notifier notifications.Sender, auditor Auditor) *Service {
	return &Service{
		store:          store,
		directory:      directory,
		goals:          goals,
		notifier:       notifier,
		auditor:        auditor,
		now:            func() time.Time { return time.Now().UTC() },
		checkInWorkers: 4,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithMetrics(m TransitionCounter) *Service {
	s.metrics = m
	return s
}

func assignmentResource(a Assignment) authz.Resource {
	return authz.Resource{
		Kind:         authz.KindAssignment,
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		ReviewerID:   a.ReviewerID,
		AssignedByID: a.AssignedByID,
	}
}

func reviewResource(r Review) authz.Resource {
	return authz.Resource{
		Kind:       authz.KindReview,
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		ReviewerID: r.ReviewerID,
	}
}

func withEmployee(res authz.Resource, employee identity.Actor) authz.Resource {
	res.EmployeeManagedBy = employee.ManagedBy
	res.EmployeeDeptID = employee.DepartmentID
	return res
}

func can(actor identity.Actor, action authz.Action, res authz.Resource) error {
	return authz.CanPerform(actor, action, res).Err()
}

// after runs the side effects of a transition. None of them can fail the
// transition that triggered it.
func (s *Service) after(ctx context.Context, actor identity.Actor, entity, action, id string, before, after any) {
	if s.metrics != nil {
		s.metrics.RecordTransition(entity, action)
	}
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, actor.ID, entity+"."+action, entity, id, before, after); err != nil {
		slog.Warn("audit record failed", "entity", entity, "id", id, "err", err)
	}
}

func (s *Service) notify(ctx context.Context, recipientID, kind string, payload map[string]any) {
	if s.notifier == nil || recipientID == "" {
		return
	}
	if err := s.notifier.Send(ctx, recipientID, kind, payload); err != nil {
		slog.Warn("workflow notification failed", "kind", kind, "recipientId", recipientID, "err", err)
	}
}

func (s *Service) actorName(ctx context.Context, id string) string {
	a, err := s.directory.Get(ctx, id)
	if err != nil {
		return ""
	}
	return a.FullName()
}

// requireReviewerOrAdmin restricts an action to the review's reviewer or an admin.
func requireReviewerOrAdmin(actor identity.Actor, reviewerID string) error {
	if actor.Role.IsAdmin() || actor.ID == reviewerID {
		return nil
	}
	return apperr.Forbidden(apperr.ReasonNotOwner, "only the reviewer or an admin may do this")
}

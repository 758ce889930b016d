package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
)

func (s *Service) Assign(ctx context.Context, actor identity.Actor, in AssignInput) (AssignmentView, error) {
	if err := validateAssign(in); err != nil {
		return AssignmentView{}, err
	}
	tmpl, err := s.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return AssignmentView{}, err
	}
	if tmpl.Status != TemplateActive {
		return AssignmentView{}, apperr.Validation(apperr.FieldIssue{Field: "templateId", Reason: "template is not active"})
	}
	employee, err := s.directory.Get(ctx, in.EmployeeID)
	if err != nil {
		return AssignmentView{}, err
	}
	reviewer, err := s.directory.Get(ctx, in.ReviewerID)
	if err != nil {
		return AssignmentView{}, err
	}
	if !reviewer.Active {
		return AssignmentView{}, apperr.Validation(apperr.FieldIssue{Field: "reviewerId", Reason: "reviewer is deactivated"})
	}

	now := s.now()
	a := Assignment{
		ID:           uuid.NewString(),
		TemplateID:   tmpl.ID,
		EmployeeID:   employee.ID,
		ReviewerID:   reviewer.ID,
		AssignedByID: actor.ID,
		DueDate:      in.DueDate,
		ReviewPeriod: in.ReviewPeriod,
		Status:       AssignmentPending,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := can(actor, authz.ActionAssign, withEmployee(assignmentResource(a), employee)); err != nil {
		return AssignmentView{}, err
	}
	created, err := s.store.CreateAssignment(ctx, a)
	if err != nil {
		return AssignmentView{}, err
	}
	s.after(ctx, actor, "assignment", "assign", created.ID, nil, created)
	s.notify(ctx, reviewer.ID, notifications.KindReviewAssigned, map[string]any{
		"assignmentId": created.ID,
		"templateName": tmpl.Name,
		"employeeName": employee.FullName(),
		"dueDate":      created.DueDate.Format(time.DateOnly),
	})
	return NewAssignmentView(created, now), nil
}

func (s *Service) GetAssignment(ctx context.Context, actor identity.Actor, id string) (AssignmentView, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return AssignmentView{}, err
	}
	if err := can(actor, authz.ActionRead, assignmentResource(a)); err != nil {
		return AssignmentView{}, err
	}
	return NewAssignmentView(a, s.now()), nil
}

// ListAssignments returns the assignments matching filter that the actor may read.
func (s *Service) ListAssignments(ctx context.Context, actor identity.Actor, filter AssignmentFilter) ([]AssignmentView, error) {
	if actor.Role == identity.RoleEmployee {
		filter.EmployeeID = actor.ID
	}
	items, err := s.store.ListAssignments(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]AssignmentView, 0, len(items))
	for _, a := range items {
		if authz.CanPerform(actor, authz.ActionRead, assignmentResource(a)).Allowed {
			out = append(out, NewAssignmentView(a, now))
		}
	}
	return out, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, actor identity.Actor, id string, patch AssignmentPatch) (AssignmentView, error) {
	var before Assignment
	updated, err := s.store.UpdateAssignment(ctx, id, func(a *Assignment) error {
		before = *a
		if err := can(actor, authz.ActionUpdate, assignmentResource(*a)); err != nil {
			return err
		}
		if !a.Status.Open() {
			return apperr.InvalidTransition("assignment", string(a.Status), actionUpdate)
		}
		if patch.DueDate != nil {
			if patch.DueDate.IsZero() {
				return apperr.Validation(apperr.FieldIssue{Field: "dueDate", Reason: "is required"})
			}
			a.DueDate = *patch.DueDate
		}
		if patch.Notes != nil {
			a.Notes = strings.TrimSpace(*patch.Notes)
		}
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return AssignmentView{}, err
	}
	s.after(ctx, actor, "assignment", "update", id, before, updated)
	return NewAssignmentView(updated, s.now()), nil
}

// Start materializes the review for a Pending assignment. A repeated call
// returns the review created by the first one.
func (s *Service) Start(ctx context.Context, actor identity.Actor, assignmentID string) (ReviewView, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return ReviewView{}, err
	}
	if err := can(actor, authz.ActionStartWorkflow, assignmentResource(a)); err != nil {
		return ReviewView{}, err
	}
	if a.CreatedReviewID != "" {
		return s.existingReview(ctx, a.CreatedReviewID)
	}
	if _, err := nextAssignmentStatus(a.Status, actionStart); err != nil {
		return ReviewView{}, err
	}

	if _, err := s.store.GetTemplate(ctx, a.TemplateID); err != nil {
		return ReviewView{}, err
	}
	if _, err := s.directory.Get(ctx, a.EmployeeID); err != nil {
		return ReviewView{}, err
	}
	reviewer, err := s.directory.Get(ctx, a.ReviewerID)
	if err != nil {
		return ReviewView{}, err
	}

	now := s.now()
	started, review, ok, err := s.store.StartAssignment(ctx, a.ID, func(locked Assignment, tmpl Template) Review {
		return reviewFromAssignment(locked, tmpl, now)
	}, now)
	if err != nil {
		return ReviewView{}, err
	}
	if !ok {
		return s.existingReview(ctx, started.CreatedReviewID)
	}

	s.after(ctx, actor, "assignment", actionStart, a.ID, a, started)
	s.notify(ctx, a.EmployeeID, notifications.KindReviewStarted, map[string]any{
		"reviewId":     review.ID,
		"reviewerName": reviewer.FullName(),
		"periodStart":  a.ReviewPeriod.Start.Format(time.DateOnly),
		"periodEnd":    a.ReviewPeriod.End.Format(time.DateOnly),
	})
	return NewReviewView(review), nil
}

func (s *Service) existingReview(ctx context.Context, reviewID string) (ReviewView, error) {
	r, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return ReviewView{}, err
	}
	return NewReviewView(r), nil
}

func reviewFromAssignment(a Assignment, tmpl Template, now time.Time) Review {
	reviewType := reviewTypeFor(tmpl.Frequency)
	return Review{
		ID:                uuid.NewString(),
		EmployeeID:        a.EmployeeID,
		ReviewerID:        a.ReviewerID,
		TemplateID:        tmpl.ID,
		AssignmentID:      a.ID,
		ReviewType:        reviewType,
		ReviewPeriod:      a.ReviewPeriod,
		Status:            ReviewInProgress,
		Sections:          Materialize(tmpl.Sections),
		GoalIDs:           []string{},
		KPIs:              []ReviewKPI{},
		ProgressSnapshots: []Snapshot{},
		Features:          tmpl.Features,
		IsOngoing:         ongoingType(reviewType),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id string) (AssignmentView, error) {
	var before Assignment
	updated, err := s.store.UpdateAssignment(ctx, id, func(a *Assignment) error {
		before = *a
		if err := can(actor, authz.ActionUpdate, assignmentResource(*a)); err != nil {
			return err
		}
		next, err := nextAssignmentStatus(a.Status, actionCancel)
		if err != nil {
			return err
		}
		a.Status = next
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return AssignmentView{}, err
	}
	s.after(ctx, actor, "assignment", actionCancel, id, before, updated)
	recipient := updated.ReviewerID
	if recipient == actor.ID {
		recipient = updated.AssignedByID
	}
	if recipient != actor.ID {
		s.notify(ctx, recipient, notifications.KindAssignmentCanceled, map[string]any{"assignmentId": id})
	}
	return NewAssignmentView(updated, s.now()), nil
}

// CompleteAssignment finishes an in-progress assignment, completing its
// review first when that is still open.
func (s *Service) CompleteAssignment(ctx context.Context, actor identity.Actor, id string) (AssignmentView, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return AssignmentView{}, err
	}
	if err := can(actor, authz.ActionUpdate, assignmentResource(a)); err != nil {
		return AssignmentView{}, err
	}
	if _, err := nextAssignmentStatus(a.Status, actionComplete); err != nil {
		return AssignmentView{}, err
	}
	if a.CreatedReviewID != "" {
		r, err := s.store.GetReview(ctx, a.CreatedReviewID)
		if err != nil {
			return AssignmentView{}, err
		}
		if r.Status.Editable() {
			if _, err := s.CompleteReview(ctx, actor, r.ID); err != nil {
				return AssignmentView{}, err
			}
			return s.GetAssignment(ctx, actor, id)
		}
	}
	updated, err := s.completeAssignment(ctx, id)
	if err != nil {
		return AssignmentView{}, err
	}
	s.after(ctx, actor, "assignment", actionComplete, id, a, updated)
	return NewAssignmentView(updated, s.now()), nil
}

func (s *Service) completeAssignment(ctx context.Context, id string) (Assignment, error) {
	return s.store.UpdateAssignment(ctx, id, func(a *Assignment) error {
		next, err := nextAssignmentStatus(a.Status, actionComplete)
		if err != nil {
			return err
		}
		now := s.now()
		a.Status = next
		a.CompletionDate = &now
		a.UpdatedAt = now
		return nil
	})
}

// DeleteAssignment removes an assignment that never produced work.
func (s *Service) DeleteAssignment(ctx context.Context, actor identity.Actor, id string) error {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if err := can(actor, authz.ActionDelete, assignmentResource(a)); err != nil {
		return err
	}
	if a.Status != AssignmentPending && a.Status != AssignmentCanceled {
		return apperr.InvalidTransition("assignment", string(a.Status), actionDelete)
	}
	if err := s.store.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	s.after(ctx, actor, "assignment", actionDelete, id, a, nil)
	return nil
}

// Overdue lists open assignments whose due date has passed.
func (s *Service) Overdue(ctx context.Context, at time.Time) ([]Assignment, error) {
	return s.store.ListAssignments(ctx, AssignmentFilter{
		Statuses:  []AssignmentStatus{AssignmentPending, AssignmentInProgress},
		DueBefore: &at,
	})
}

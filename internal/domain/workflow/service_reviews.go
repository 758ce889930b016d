package workflow

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
)

// CreateReview opens an ad hoc Draft review with the caller as reviewer,
// optionally materialized from a template.
func (s *Service) CreateReview(ctx context.Context, actor identity.Actor, in CreateReviewInput) (ReviewView, error) {
	if err := validateCreateReview(in); err != nil {
		return ReviewView{}, err
	}
	employee, err := s.directory.Get(ctx, in.EmployeeID)
	if err != nil {
		return ReviewView{}, err
	}
	now := s.now()
	r := Review{
		ID:                uuid.NewString(),
		EmployeeID:        employee.ID,
		ReviewerID:        actor.ID,
		ReviewType:        in.ReviewType,
		ReviewPeriod:      Period{Start: in.StartDate, End: in.EndDate},
		Status:            ReviewDraft,
		Sections:          []ReviewSection{},
		GoalIDs:           slices.Clone(in.GoalIDs),
		KPIs:              []ReviewKPI{},
		ProgressSnapshots: []Snapshot{},
		Features:          in.Features,
		IsOngoing:         ongoingType(in.ReviewType),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if r.GoalIDs == nil {
		r.GoalIDs = []string{}
	}
	if err := can(actor, authz.ActionCreate, withEmployee(reviewResource(r), employee)); err != nil {
		return ReviewView{}, err
	}
	if in.TemplateID != "" {
		tmpl, err := s.store.GetTemplate(ctx, in.TemplateID)
		if err != nil {
			return ReviewView{}, err
		}
		r.TemplateID = tmpl.ID
		r.Sections = Materialize(tmpl.Sections)
		r.Features = tmpl.Features
	}
	created, err := s.store.CreateReview(ctx, r)
	if err != nil {
		return ReviewView{}, err
	}
	s.after(ctx, actor, "review", "create", created.ID, nil, created)
	return NewReviewView(created), nil
}

func (s *Service) GetReview(ctx context.Context, actor identity.Actor, id string) (ReviewView, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return ReviewView{}, err
	}
	if err := can(actor, authz.ActionRead, reviewResource(r)); err != nil {
		return ReviewView{}, err
	}
	return NewReviewView(r), nil
}

// ListReviews returns the reviews matching filter that the actor may read.
func (s *Service) ListReviews(ctx context.Context, actor identity.Actor, filter ReviewFilter) ([]ReviewView, error) {
	if actor.Role == identity.RoleEmployee {
		filter.EmployeeID = actor.ID
	}
	items, err := s.store.ListReviews(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewView, 0, len(items))
	for _, r := range items {
		if authz.CanPerform(actor, authz.ActionRead, reviewResource(r)).Allowed {
			out = append(out, NewReviewView(r))
		}
	}
	return out, nil
}

// EditReview changes ratings, feedback, responses or linked goals while the
// review is still open. The section structure never changes.
func (s *Service) EditReview(ctx context.Context, actor identity.Actor, id string, edit ReviewEdit) (ReviewView, error) {
	var before Review
	updated, err := s.store.UpdateReview(ctx, id, func(r *Review) error {
		before = *r
		if err := can(actor, authz.ActionUpdate, reviewResource(*r)); err != nil {
			return err
		}
		if err := guardEditable(*r, actionEdit); err != nil {
			return err
		}
		v := apperr.NewValidator()
		if edit.Ratings != nil {
			validateRatings(v, *edit.Ratings)
		}
		validateResponses(v, r.Sections, edit.Responses)
		if err := v.Err(); err != nil {
			return err
		}

		if edit.Ratings != nil {
			mergeRatings(&r.Ratings, *edit.Ratings)
		}
		if edit.Feedback != nil {
			r.Feedback = Feedback{
				Strengths:           strings.TrimSpace(edit.Feedback.Strengths),
				AreasForImprovement: strings.TrimSpace(edit.Feedback.AreasForImprovement),
				Comments:            strings.TrimSpace(edit.Feedback.Comments),
			}
		}
		if len(edit.Responses) > 0 {
			r.Sections = copyReviewSections(r.Sections)
			for _, in := range edit.Responses {
				r.Sections[in.Section].Questions[in.Question].Response = in.Response
			}
		}
		if edit.GoalIDs != nil {
			r.GoalIDs = slices.Clone(edit.GoalIDs)
		}
		if edit.KPIs != nil {
			r.KPIs = slices.Clone(edit.KPIs)
		}
		r.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return ReviewView{}, err
	}
	s.after(ctx, actor, "review", actionEdit, id, before, updated)
	return NewReviewView(updated), nil
}

func copyReviewSections(sections []ReviewSection) []ReviewSection {
	out := make([]ReviewSection, len(sections))
	for i, section := range sections {
		out[i] = section
		out[i].Questions = slices.Clone(section.Questions)
	}
	return out
}

func (s *Service) SubmitReview(ctx context.Context, actor identity.Actor, id string) (ReviewView, error) {
	var before Review
	updated, err := s.store.UpdateReview(ctx, id, func(r *Review) error {
		before = *r
		if err := can(actor, authz.ActionUpdate, reviewResource(*r)); err != nil {
			return err
		}
		next, err := nextReviewStatus(r.Status, actionSubmit)
		if err != nil {
			return err
		}
		now := s.now()
		r.Status = next
		r.SubmittedAt = &now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return ReviewView{}, err
	}
	s.after(ctx, actor, "review", actionSubmit, id, before, updated)
	s.notify(ctx, updated.EmployeeID, notifications.KindReviewSubmitted, map[string]any{"reviewId": id})
	return NewReviewView(updated), nil
}

// CompleteReview finishes the review and, when it came from an assignment,
// completes that assignment too.
func (s *Service) CompleteReview(ctx context.Context, actor identity.Actor, id string) (ReviewView, error) {
	var before Review
	updated, err := s.store.UpdateReview(ctx, id, func(r *Review) error {
		before = *r
		if err := can(actor, authz.ActionUpdate, reviewResource(*r)); err != nil {
			return err
		}
		if err := requireReviewerOrAdmin(actor, r.ReviewerID); err != nil {
			return err
		}
		next, err := nextReviewStatus(r.Status, actionComplete)
		if err != nil {
			return err
		}
		now := s.now()
		r.Status = next
		r.CompletedAt = &now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return ReviewView{}, err
	}
	s.after(ctx, actor, "review", actionComplete, id, before, updated)

	if updated.AssignmentID != "" {
		a, err := s.completeAssignment(ctx, updated.AssignmentID)
		switch {
		case err == nil:
			s.after(ctx, actor, "assignment", actionComplete, a.ID, nil, a)
		case apperr.Is(err, apperr.KindInvalidTransition), apperr.Is(err, apperr.KindNotFound):
		default:
			return NewReviewView(updated), err
		}
	}
	s.notify(ctx, updated.EmployeeID, notifications.KindReviewCompleted, map[string]any{"reviewId": id})
	return NewReviewView(updated), nil
}

// AcknowledgeReview records the reviewed employee's sign-off. Nobody else can
// acknowledge, admins included.
func (s *Service) AcknowledgeReview(ctx context.Context, actor identity.Actor, id, comments string) (ReviewView, error) {
	var before Review
	updated, err := s.store.UpdateReview(ctx, id, func(r *Review) error {
		before = *r
		if err := can(actor, authz.ActionAcknowledge, reviewResource(*r)); err != nil {
			return err
		}
		if actor.ID != r.EmployeeID {
			return apperr.Forbidden(apperr.ReasonNotOwner, "only the reviewed employee may acknowledge")
		}
		next, err := nextReviewStatus(r.Status, actionAcknowledge)
		if err != nil {
			return err
		}
		now := s.now()
		r.Status = next
		r.Acknowledgement = &Acknowledgement{Acknowledged: true, Date: now, EmployeeComments: strings.TrimSpace(comments)}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return ReviewView{}, err
	}
	s.after(ctx, actor, "review", actionAcknowledge, id, before, updated)
	s.notify(ctx, updated.ReviewerID, notifications.KindReviewAcknowledged, map[string]any{
		"reviewId":     id,
		"employeeName": actor.FullName(),
	})
	return NewReviewView(updated), nil
}

// DeleteReview removes an ad hoc review. Reviews produced by an assignment
// stay linked to it and cannot be deleted.
func (s *Service) DeleteReview(ctx context.Context, actor identity.Actor, id string) error {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := can(actor, authz.ActionDelete, reviewResource(r)); err != nil {
		return err
	}
	if r.AssignmentID != "" {
		return apperr.InvalidTransition("review", string(r.Status), actionDelete)
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.after(ctx, actor, "review", actionDelete, id, r, nil)
	return nil
}

// Stats summarizes the reviews visible to a manager or admin.
func (s *Service) Stats(ctx context.Context, actor identity.Actor) (ReviewStats, error) {
	if actor.Role == identity.RoleEmployee {
		return ReviewStats{}, apperr.Forbidden(apperr.ReasonInsufficientRole, "review statistics require a manager")
	}
	views, err := s.ListReviews(ctx, actor, ReviewFilter{})
	if err != nil {
		return ReviewStats{}, err
	}
	reviews := make([]Review, 0, len(views))
	for _, v := range views {
		reviews = append(reviews, v.Review)
	}
	return BuildStats(reviews), nil
}

func BuildStats(reviews []Review) ReviewStats {
	stats := ReviewStats{
		Total:    len(reviews),
		ByStatus: map[ReviewStatus]int{},
		ByType:   map[string]int{},
	}
	var overallSum, avgSum float64
	var overallN, avgN int
	for _, r := range reviews {
		stats.ByStatus[r.Status]++
		stats.ByType[r.ReviewType]++
		if r.Ratings.Overall != nil {
			overallSum += float64(*r.Ratings.Overall)
			overallN++
		}
		if avg := AverageRating(r.Ratings); avg != nil {
			avgSum += *avg
			avgN++
		}
	}
	if overallN > 0 {
		v := overallSum / float64(overallN)
		stats.AverageOverall = &v
	}
	if avgN > 0 {
		v := avgSum / float64(avgN)
		stats.AverageRating = &v
	}
	return stats
}

package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/workflow"
)

func (s *Store) CreateTemplate(ctx context.Context, t workflow.Template) (workflow.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(t)
	if err != nil {
		return workflow.Template{}, err
	}
	s.templates.put(t.ID, stored)
	return t, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (workflow.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates.get(id)
	if !ok {
		return workflow.Template{}, apperr.NotFound("template", id)
	}
	return clone(t)
}

func (s *Store) ListTemplates(ctx context.Context, filter workflow.TemplateFilter) ([]workflow.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflow.Template, 0)
	for i := len(s.templates.order) - 1; i >= 0; i-- {
		t := s.templates.rows[s.templates.order[i]]
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		c, err := clone(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, id string, fn func(t *workflow.Template, inUse bool) error) (workflow.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.templates.get(id)
	if !ok {
		return workflow.Template{}, apperr.NotFound("template", id)
	}
	t, err := clone(current)
	if err != nil {
		return workflow.Template{}, err
	}
	if err := fn(&t, s.templateInUse(id)); err != nil {
		return workflow.Template{}, err
	}
	stored, err := clone(t)
	if err != nil {
		return workflow.Template{}, err
	}
	s.templates.put(id, stored)
	return t, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string, guard func(t workflow.Template, inUse bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.templates.get(id)
	if !ok {
		return apperr.NotFound("template", id)
	}
	t, err := clone(current)
	if err != nil {
		return err
	}
	if err := guard(t, s.templateInUse(id)); err != nil {
		return err
	}
	s.templates.remove(id)
	return nil
}

// templateInUse expects s.mu held.
func (s *Store) templateInUse(templateID string) bool {
	for _, a := range s.assignments.rows {
		if a.TemplateID == templateID && a.Status != workflow.AssignmentPending {
			return true
		}
	}
	return false
}

func (s *Store) CreateAssignment(ctx context.Context, a workflow.Assignment) (workflow.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(a)
	if err != nil {
		return workflow.Assignment{}, err
	}
	s.assignments.put(a.ID, stored)
	return a, nil
}

func (s *Store) GetAssignment(ctx context.Context, id string) (workflow.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments.get(id)
	if !ok {
		return workflow.Assignment{}, apperr.NotFound("assignment", id)
	}
	return clone(a)
}

func (s *Store) ListAssignments(ctx context.Context, filter workflow.AssignmentFilter) ([]workflow.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflow.Assignment, 0)
	for _, id := range s.assignments.order {
		a := s.assignments.rows[id]
		switch {
		case filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID:
		case filter.ReviewerID != "" && a.ReviewerID != filter.ReviewerID:
		case filter.AssignedByID != "" && a.AssignedByID != filter.AssignedByID:
		case filter.TemplateID != "" && a.TemplateID != filter.TemplateID:
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, a.Status):
		case filter.DueBefore != nil && !a.DueDate.Before(*filter.DueBefore):
		default:
			c, err := clone(a)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(x, y workflow.Assignment) int { return x.DueDate.Compare(y.DueDate) })
	return out, nil
}

func (s *Store) UpdateAssignment(ctx context.Context, id string, fn func(*workflow.Assignment) error) (workflow.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.assignments.get(id)
	if !ok {
		return workflow.Assignment{}, apperr.NotFound("assignment", id)
	}
	a, err := clone(current)
	if err != nil {
		return workflow.Assignment{}, err
	}
	if err := fn(&a); err != nil {
		return workflow.Assignment{}, err
	}
	stored, err := clone(a)
	if err != nil {
		return workflow.Assignment{}, err
	}
	s.assignments.put(id, stored)
	return a, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.assignments.remove(id) {
		return apperr.NotFound("assignment", id)
	}
	return nil
}

func (s *Store) StartAssignment(ctx context.Context, id string, build func(a workflow.Assignment, t workflow.Template) workflow.Review, at time.Time) (workflow.Assignment, workflow.Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments.get(id)
	if !ok {
		return workflow.Assignment{}, workflow.Review{}, false, apperr.NotFound("assignment", id)
	}
	if a.CreatedReviewID != "" {
		out, err := clone(a)
		return out, workflow.Review{}, false, err
	}
	if a.Status != workflow.AssignmentPending {
		return workflow.Assignment{}, workflow.Review{}, false, apperr.InvalidTransition("assignment", string(a.Status), "start")
	}
	current, ok := s.templates.get(a.TemplateID)
	if !ok {
		return workflow.Assignment{}, workflow.Review{}, false, apperr.NotFound("template", a.TemplateID)
	}
	tmpl, err := clone(current)
	if err != nil {
		return workflow.Assignment{}, workflow.Review{}, false, err
	}
	input, err := clone(a)
	if err != nil {
		return workflow.Assignment{}, workflow.Review{}, false, err
	}
	review := build(input, tmpl)
	storedReview, err := clone(review)
	if err != nil {
		return workflow.Assignment{}, workflow.Review{}, false, err
	}
	start := at
	a.Status = workflow.AssignmentInProgress
	a.StartDate = &start
	a.CreatedReviewID = review.ID
	a.UpdatedAt = at
	s.reviews.put(review.ID, storedReview)
	s.assignments.put(id, a)
	out, err := clone(a)
	return out, review, true, err
}

func (s *Store) CreateReview(ctx context.Context, r workflow.Review) (workflow.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(r)
	if err != nil {
		return workflow.Review{}, err
	}
	s.reviews.put(r.ID, stored)
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, id string) (workflow.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews.get(id)
	if !ok {
		return workflow.Review{}, apperr.NotFound("review", id)
	}
	return clone(r)
}

func (s *Store) ListReviews(ctx context.Context, filter workflow.ReviewFilter) ([]workflow.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflow.Review, 0)
	for i := len(s.reviews.order) - 1; i >= 0; i-- {
		r := s.reviews.rows[s.reviews.order[i]]
		switch {
		case filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID:
		case filter.ReviewerID != "" && r.ReviewerID != filter.ReviewerID:
		case filter.Status != "" && r.Status != filter.Status:
		case filter.ReviewType != "" && r.ReviewType != filter.ReviewType:
		default:
			c, err := clone(r)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpdateReview(ctx context.Context, id string, fn func(*workflow.Review) error) (workflow.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reviews.get(id)
	if !ok {
		return workflow.Review{}, apperr.NotFound("review", id)
	}
	r, err := clone(current)
	if err != nil {
		return workflow.Review{}, err
	}
	if err := fn(&r); err != nil {
		return workflow.Review{}, err
	}
	existing := len(current.ProgressSnapshots)
	if len(r.ProgressSnapshots) < existing {
		return workflow.Review{}, errors.New("review snapshots are append-only")
	}
	stored, err := clone(r)
	if err != nil {
		return workflow.Review{}, err
	}
	stored.ProgressSnapshots = append(slices.Clone(current.ProgressSnapshots), stored.ProgressSnapshots[existing:]...)
	s.reviews.put(id, stored)
	return r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reviews.remove(id) {
		return apperr.NotFound("review", id)
	}
	return nil
}

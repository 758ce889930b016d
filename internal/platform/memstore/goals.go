package memstore

import (
	"context"
	"slices"

	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/progress"
)

func (s *Store) CreateGoal(ctx context.Context, goal progress.Goal) (progress.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(goal)
	if err != nil {
		return progress.Goal{}, err
	}
	s.goals.put(goal.ID, stored)
	return goal, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (progress.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals.get(id)
	if !ok {
		return progress.Goal{}, apperr.NotFound("goal", id)
	}
	return clone(g)
}

func (s *Store) ListGoals(ctx context.Context, filter progress.Filter) ([]progress.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]progress.Goal, 0)
	for i := len(s.goals.order) - 1; i >= 0; i-- {
		g := s.goals.rows[s.goals.order[i]]
		switch {
		case filter.EmployeeID != "" && g.EmployeeID != filter.EmployeeID:
		case len(filter.EmployeeIDs) > 0 && !slices.Contains(filter.EmployeeIDs, g.EmployeeID):
		case filter.ReviewerID != "" && g.ReviewerID != filter.ReviewerID:
		case filter.ReviewID != "" && g.ReviewID != filter.ReviewID:
		case filter.Status != "" && g.Status != filter.Status:
		default:
			c, err := clone(g)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) MutateGoal(ctx context.Context, id string, fn func(*progress.Goal) error) (progress.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.goals.get(id)
	if !ok {
		return progress.Goal{}, apperr.NotFound("goal", id)
	}
	g, err := clone(current)
	if err != nil {
		return progress.Goal{}, err
	}
	if err := fn(&g); err != nil {
		return progress.Goal{}, err
	}
	if len(g.ProgressHistory) < len(current.ProgressHistory) {
		return progress.Goal{}, errors.New("goal progress history is append-only")
	}
	stored, err := clone(g)
	if err != nil {
		return progress.Goal{}, err
	}
	stored.ProgressHistory = append(slices.Clone(current.ProgressHistory), stored.ProgressHistory[len(current.ProgressHistory):]...)
	s.goals.put(id, stored)
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.goals.remove(id) {
		return apperr.NotFound("goal", id)
	}
	return nil
}

package progress

import "context"

type StoreAPI interface {
	CreateGoal(ctx context.Context, goal Goal) (Goal, error)
	GetGoal(ctx context.Context, id string) (Goal, error)
	ListGoals(ctx context.Context, filter Filter) ([]Goal, error)
	// MutateGoal runs fn on the locked goal and persists the result. History
	// entries appended by fn are inserted; existing entries are never rewritten.
	MutateGoal(ctx context.Context, id string, fn func(*Goal) error) (Goal, error)
	DeleteGoal(ctx context.Context, id string) error
}

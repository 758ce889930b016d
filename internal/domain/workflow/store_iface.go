package workflow

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateTemplate(ctx context.Context, t Template) (Template, error)
	GetTemplate(ctx context.Context, id string) (Template, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]Template, error)
	// UpdateTemplate runs fn on the locked template. inUse reports whether an
	// assignment referencing it has left Pending, read under the same lock.
	UpdateTemplate(ctx context.Context, id string, fn func(t *Template, inUse bool) error) (Template, error)
	// DeleteTemplate removes the template unless guard rejects it. guard sees
	// the same locked state as UpdateTemplate.
	DeleteTemplate(ctx context.Context, id string, guard func(t Template, inUse bool) error) error

	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, id string, fn func(*Assignment) error) (Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	// StartAssignment atomically links a new review to a Pending assignment and
	// moves it to InProgress. build materializes the review from the template
	// as it stands while the start holds it, so a concurrent template edit
	// either lands first or is rejected. When the assignment already links a
	// review it is returned unchanged with started=false and build is not called.
	StartAssignment(ctx context.Context, id string, build func(a Assignment, t Template) Review, at time.Time) (a Assignment, review Review, started bool, err error)

	CreateReview(ctx context.Context, r Review) (Review, error)
	GetReview(ctx context.Context, id string) (Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, error)
	// UpdateReview runs fn on the locked review. Snapshots appended by fn are
	// inserted; existing snapshots are never rewritten.
	UpdateReview(ctx context.Context, id string, fn func(*Review) error) (Review, error)
	DeleteReview(ctx context.Context, id string) error
}

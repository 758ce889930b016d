package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/platform/querier"
)

const assignmentColumns = `id, template_id, employee_id, reviewer_id, assigned_by, due_date, period_start, period_end,
  status, COALESCE(created_review_id, ''), start_date, completion_date, notes, created_at, updated_at`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	var status string
	if err := row.Scan(&a.ID, &a.TemplateID, &a.EmployeeID, &a.ReviewerID, &a.AssignedByID, &a.DueDate,
		&a.ReviewPeriod.Start, &a.ReviewPeriod.End, &status, &a.CreatedReviewID, &a.StartDate, &a.CompletionDate,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Assignment{}, err
	}
	a.Status = AssignmentStatus(status)
	return a, nil
}

func (s *Store) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO review_assignments (id, template_id, employee_id, reviewer_id, assigned_by, due_date, period_start,
                                    period_end, status, notes, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
  `, a.ID, a.TemplateID, a.EmployeeID, a.ReviewerID, a.AssignedByID, a.DueDate, a.ReviewPeriod.Start,
		a.ReviewPeriod.End, string(a.Status), a.Notes, a.CreatedAt, a.UpdatedAt); err != nil {
		return Assignment{}, errors.Wrap(err, "insert assignment")
	}
	return a, nil
}

func (s *Store) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return loadAssignment(ctx, s.DB, id, false)
}

func loadAssignment(ctx context.Context, db querier.Querier, id string, lock bool) (Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM review_assignments WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	a, err := scanAssignment(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, apperr.NotFound("assignment", id)
	}
	if err != nil {
		return Assignment{}, errors.Wrap(err, "load assignment")
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM review_assignments WHERE 1=1"
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	add("employee_id", filter.EmployeeID)
	add("reviewer_id", filter.ReviewerID)
	add("assigned_by", filter.AssignedByID)
	add("template_id", filter.TemplateID)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		query += fmt.Sprintf(" AND due_date < $%d", len(args))
	}
	query += " ORDER BY due_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	defer rows.Close()

	out := make([]Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan assignment")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAssignment(ctx context.Context, id string, fn func(*Assignment) error) (Assignment, error) {
	var updated Assignment
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		a, err := loadAssignment(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(&a); err != nil {
			return err
		}
		if err := saveAssignment(ctx, tx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	return updated, err
}

func saveAssignment(ctx context.Context, tx pgx.Tx, a Assignment) error {
	_, err := tx.Exec(ctx, `
    UPDATE review_assignments
    SET due_date = $1, status = $2, created_review_id = $3, start_date = $4, completion_date = $5, notes = $6, updated_at = $7
    WHERE id = $8
  `, a.DueDate, string(a.Status), querier.NullIfEmpty(a.CreatedReviewID), a.StartDate, a.CompletionDate, a.Notes,
		a.UpdatedAt, a.ID)
	return errors.Wrap(err, "update assignment")
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM review_assignments WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete assignment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("assignment", id)
	}
	return nil
}

// StartAssignment locks the assignment row so concurrent starts serialize;
// the loser sees created_review_id already set. The template row is share
// locked so an edit cannot slip past the in-use check while the review is
// materialized.
func (s *Store) StartAssignment(ctx context.Context, id string, build func(a Assignment, t Template) Review, at time.Time) (Assignment, Review, bool, error) {
	var result Assignment
	var review Review
	var started bool
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		a, err := loadAssignment(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if a.CreatedReviewID != "" {
			result = a
			return nil
		}
		next, err := nextAssignmentStatus(a.Status, actionStart)
		if err != nil {
			return err
		}
		tmpl, err := loadTemplate(ctx, tx, a.TemplateID, "FOR SHARE")
		if err != nil {
			return err
		}
		review = build(a, tmpl)
		if err := insertReview(ctx, tx, review); err != nil {
			return err
		}
		a.Status = next
		a.StartDate = timePtr(at)
		a.CreatedReviewID = review.ID
		a.UpdatedAt = at
		if err := saveAssignment(ctx, tx, a); err != nil {
			return err
		}
		result = a
		started = true
		return nil
	})
	if err != nil || !started {
		return result, Review{}, false, err
	}
	return result, review, true, nil
}

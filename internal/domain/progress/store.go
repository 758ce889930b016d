package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const goalColumns = `id, employee_id, COALESCE(reviewer_id, ''), COALESCE(review_id, ''), COALESCE(kpi_id, ''),
  created_by, title, description, notes, cycle, is_private, target_date, status, progress, created_at, updated_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var cycle, status string
	if err := row.Scan(&g.ID, &g.EmployeeID, &g.ReviewerID, &g.ReviewID, &g.KPIID, &g.CreatedByID, &g.Title,
		&g.Description, &g.Notes, &cycle, &g.IsPrivate, &g.TargetDate, &status, &g.Progress, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return Goal{}, err
	}
	g.Cycle = Cycle(cycle)
	g.Status = Status(status)
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, goal Goal) (Goal, error) {
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
      INSERT INTO goals (id, employee_id, reviewer_id, review_id, kpi_id, created_by, title, description, notes,
                         cycle, is_private, target_date, status, progress, created_at, updated_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
    `, goal.ID, goal.EmployeeID, querier.NullIfEmpty(goal.ReviewerID), querier.NullIfEmpty(goal.ReviewID),
			querier.NullIfEmpty(goal.KPIID), goal.CreatedByID, goal.Title, goal.Description, goal.Notes,
			string(goal.Cycle), goal.IsPrivate, goal.TargetDate, string(goal.Status), goal.Progress,
			goal.CreatedAt, goal.UpdatedAt); err != nil {
			return errors.Wrap(err, "insert goal")
		}
		return insertHistory(ctx, tx, goal.ID, 0, goal.ProgressHistory)
	})
	if err != nil {
		return Goal{}, err
	}
	return goal, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, goalID string, offset int, entries []HistoryEntry) error {
	for i, entry := range entries {
		if _, err := tx.Exec(ctx, `
      INSERT INTO goal_progress_history (goal_id, position, recorded_at, progress, status, updated_by, notes)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, goalID, offset+i, entry.Date, entry.Progress, string(entry.Status), entry.UpdatedBy, entry.Notes); err != nil {
			return errors.Wrap(err, "append goal history")
		}
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (Goal, error) {
	return loadGoal(ctx, s.DB, id, false)
}

func loadGoal(ctx context.Context, db querier.Querier, id string, lock bool) (Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	g, err := scanGoal(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, apperr.NotFound("goal", id)
	}
	if err != nil {
		return Goal{}, errors.Wrap(err, "load goal")
	}
	history, err := loadHistory(ctx, db, id)
	if err != nil {
		return Goal{}, err
	}
	g.ProgressHistory = history
	return g, nil
}

func loadHistory(ctx context.Context, db querier.Querier, goalID string) ([]HistoryEntry, error) {
	rows, err := db.Query(ctx, `
    SELECT recorded_at, progress, status, updated_by, notes
    FROM goal_progress_history
    WHERE goal_id = $1
    ORDER BY position
  `, goalID)
	if err != nil {
		return nil, errors.Wrap(err, "load goal history")
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	for rows.Next() {
		var entry HistoryEntry
		var status string
		if err := rows.Scan(&entry.Date, &entry.Progress, &status, &entry.UpdatedBy, &entry.Notes); err != nil {
			return nil, errors.Wrap(err, "scan goal history")
		}
		entry.Status = Status(status)
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) ListGoals(ctx context.Context, filter Filter) ([]Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if len(filter.EmployeeIDs) > 0 {
		args = append(args, filter.EmployeeIDs)
		query += fmt.Sprintf(" AND employee_id = ANY($%d)", len(args))
	}
	if filter.ReviewerID != "" {
		args = append(args, filter.ReviewerID)
		query += fmt.Sprintf(" AND reviewer_id = $%d", len(args))
	}
	if filter.ReviewID != "" {
		args = append(args, filter.ReviewID)
		query += fmt.Sprintf(" AND review_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list goals")
	}
	goals := make([]Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan goal")
		}
		goals = append(goals, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list goals")
	}
	for i := range goals {
		history, err := loadHistory(ctx, s.DB, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].ProgressHistory = history
	}
	return goals, nil
}

func (s *Store) MutateGoal(ctx context.Context, id string, fn func(*Goal) error) (Goal, error) {
	var updated Goal
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		g, err := loadGoal(ctx, tx, id, true)
		if err != nil {
			return err
		}
		existing := len(g.ProgressHistory)
		if err := fn(&g); err != nil {
			return err
		}
		if len(g.ProgressHistory) < existing {
			return errors.New("goal history cannot shrink")
		}
		if g.UpdatedAt.IsZero() {
			g.UpdatedAt = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx, `
      UPDATE goals
      SET reviewer_id = $1, kpi_id = $2, title = $3, description = $4, notes = $5, cycle = $6,
          is_private = $7, target_date = $8, status = $9, progress = $10, updated_at = $11
      WHERE id = $12
    `, querier.NullIfEmpty(g.ReviewerID), querier.NullIfEmpty(g.KPIID), g.Title, g.Description, g.Notes,
			string(g.Cycle), g.IsPrivate, g.TargetDate, string(g.Status), g.Progress, g.UpdatedAt, id); err != nil {
			return errors.Wrap(err, "update goal")
		}
		if err := insertHistory(ctx, tx, id, existing, g.ProgressHistory[existing:]); err != nil {
			return err
		}
		updated = g
		return nil
	})
	return updated, err
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM goals WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete goal")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("goal", id)
	}
	return nil
}

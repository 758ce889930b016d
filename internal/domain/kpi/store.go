package kpi

import (
	"context"
	"fmt"

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

const kpiColumns = `id, title, description, category, target, target_value, unit, frequency,
  COALESCE(department_id, ''), is_global, start_date, end_date, status, created_by, created_at, updated_at`

func scanKPI(row pgx.Row) (KPI, error) {
	var k KPI
	var category, status string
	if err := row.Scan(&k.ID, &k.Title, &k.Description, &category, &k.Target, &k.TargetValue, &k.Unit, &k.Frequency,
		&k.DepartmentID, &k.IsGlobal, &k.StartDate, &k.EndDate, &status, &k.CreatedByID, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return KPI{}, err
	}
	k.Category = Category(category)
	k.Status = Status(status)
	return k, nil
}

func (s *Store) CreateKPI(ctx context.Context, k KPI) (KPI, error) {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO kpis (id, title, description, category, target, target_value, unit, frequency, department_id,
                      is_global, start_date, end_date, status, created_by, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
  `, k.ID, k.Title, k.Description, string(k.Category), k.Target, k.TargetValue, k.Unit, k.Frequency,
		querier.NullIfEmpty(k.DepartmentID), k.IsGlobal, k.StartDate, k.EndDate, string(k.Status), k.CreatedByID,
		k.CreatedAt, k.UpdatedAt)
	if err != nil {
		return KPI{}, errors.Wrap(err, "insert kpi")
	}
	return k, nil
}

func (s *Store) GetKPI(ctx context.Context, id string) (KPI, error) {
	return loadKPI(ctx, s.DB, id, false)
}

func loadKPI(ctx context.Context, db querier.Querier, id string, lock bool) (KPI, error) {
	query := "SELECT " + kpiColumns + " FROM kpis WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	k, err := scanKPI(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return KPI{}, apperr.NotFound("kpi", id)
	}
	if err != nil {
		return KPI{}, errors.Wrap(err, "load kpi")
	}
	return k, nil
}

func (s *Store) ListKPIs(ctx context.Context, filter Filter) ([]KPI, error) {
	query := "SELECT " + kpiColumns + " FROM kpis WHERE 1=1"
	var args []any
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		if filter.IncludeGlobal {
			query += fmt.Sprintf(" AND (department_id = $%d OR is_global)", len(args))
		} else {
			query += fmt.Sprintf(" AND department_id = $%d", len(args))
		}
	} else if filter.IncludeGlobal {
		query += " AND is_global"
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY category, title"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list kpis")
	}
	defer rows.Close()

	out := make([]KPI, 0)
	for rows.Next() {
		k, err := scanKPI(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan kpi")
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) UpdateKPI(ctx context.Context, id string, fn func(*KPI) error) (KPI, error) {
	var updated KPI
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		k, err := loadKPI(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(&k); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      UPDATE kpis
      SET title = $1, description = $2, category = $3, target = $4, target_value = $5, unit = $6, frequency = $7,
          department_id = $8, is_global = $9, start_date = $10, end_date = $11, status = $12, updated_at = $13
      WHERE id = $14
    `, k.Title, k.Description, string(k.Category), k.Target, k.TargetValue, k.Unit, k.Frequency,
			querier.NullIfEmpty(k.DepartmentID), k.IsGlobal, k.StartDate, k.EndDate, string(k.Status), k.UpdatedAt, id); err != nil {
			return errors.Wrap(err, "update kpi")
		}
		updated = k
		return nil
	})
	return updated, err
}

func (s *Store) DeleteKPI(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM kpis WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete kpi")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("kpi", id)
	}
	return nil
}

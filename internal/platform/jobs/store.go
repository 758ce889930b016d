package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"hrperf/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) StartRun(ctx context.Context, jobType string, at time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, status, started_at)
    VALUES ($1,$2,$3,$4)
  `, id, jobType, RunRunning, at)
	if err != nil {
		return "", errors.Wrap(err, "insert job run")
	}
	return id, nil
}

func (s *Store) FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = $3
    WHERE id = $4
  `, status, details, at, id)
	return errors.Wrap(err, "update job run")
}

func (s *Store) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC
    LIMIT $2
  `, jobType, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list job runs")
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var run Run
		var details []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, errors.Wrap(err, "scan job run")
		}
		run.Details = details
		out = append(out, run)
	}
	return out, errors.Wrap(rows.Err(), "list job runs")
}

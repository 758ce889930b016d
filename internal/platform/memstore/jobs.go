package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/platform/jobs"
)

func (s *Store) StartRun(ctx context.Context, jobType string, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.runs.put(id, jobs.Run{ID: id, JobType: jobType, Status: jobs.RunRunning, StartedAt: at})
	return id, nil
}

func (s *Store) FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs.get(id)
	if !ok {
		return apperr.NotFound("job run", id)
	}
	run.Status = status
	run.Details = slices.Clone(details)
	run.CompletedAt = &at
	s.runs.put(id, run)
	return nil
}

func (s *Store) ListRuns(ctx context.Context, jobType string, limit int) ([]jobs.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []jobs.Run
	s.runs.each(func(r jobs.Run) {
		if jobType == "" || r.JobType == jobType {
			out = append(out, r)
		}
	})
	slices.Reverse(out)
	return page(out, limit, 0), nil
}

// Package jobs runs background work on a single queue worker and records each
// run in the job run store.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const JobOverdueReminders = "overdue_reminders"

const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type RunStore interface {
	StartRun(ctx context.Context, jobType string, at time.Time) (string, error)
	FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error
	ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error)
}

type Service struct {
	runs  RunStore
	queue chan job
	now   func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunStore) *Service {
	return &Service{
		runs:  runs,
		queue: make(chan job, 128),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the queue worker until ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Every enqueues run each interval until ctx is done.
func (s *Service) Every(ctx context.Context, jobType string, interval time.Duration, run func(context.Context) (any, error)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(jobType, run)
			}
		}
	}()
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) Runs(ctx context.Context, jobType string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.ListRuns(ctx, jobType, limit)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.runs.StartRun(ctx, j.Type, s.now())
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, err := j.Run(ctx)
	status := RunCompleted
	if err != nil {
		status = RunFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.FinishRun(ctx, runID, status, detailsJSON, s.now()); updErr != nil {
			slog.Warn("job run update failed", "jobType", j.Type, "err", updErr)
		}
	}
	return details, err
}

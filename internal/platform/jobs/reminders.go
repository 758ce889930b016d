package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/domain/workflow"
)

type OverdueSource interface {
	Overdue(ctx context.Context, at time.Time) ([]workflow.Assignment, error)
}

type Directory interface {
	Get(ctx context.Context, id string) (identity.Actor, error)
}

// Reminders notifies reviewers about open assignments past their due date. An
// assignment is reminded at most once per Every.
type Reminders struct {
	source    OverdueSource
	directory Directory
	notifier  notifications.Sender
	Every     time.Duration
	now       func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewReminders(source OverdueSource, directory Directory, notifier notifications.Sender) *Reminders {
	return &Reminders{
		source:    source,
		directory: directory,
		notifier:  notifier,
		Every:     24 * time.Hour,
		now:       func() time.Time { return time.Now().UTC() },
		sent:      map[string]time.Time{},
	}
}

func (r *Reminders) Run(ctx context.Context) (any, error) {
	at := r.now()
	overdue, err := r.source.Overdue(ctx, at)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	notified := 0
	open := make(map[string]bool, len(overdue))
	for _, a := range overdue {
		open[a.ID] = true
		if last, ok := r.sent[a.ID]; ok && at.Sub(last) < r.Every {
			continue
		}
		payload := map[string]any{
			"assignmentId": a.ID,
			"employeeName": r.name(ctx, a.EmployeeID),
			"dueDate":      a.DueDate.Format(time.DateOnly),
			"status":       string(a.Status),
		}
		if err := r.notifier.Send(ctx, a.ReviewerID, notifications.KindAssignmentOverdue, payload); err != nil {
			slog.Warn("overdue reminder failed", "assignmentId", a.ID, "err", err)
			continue
		}
		r.sent[a.ID] = at
		notified++
	}
	for id := range r.sent {
		if !open[id] {
			delete(r.sent, id)
		}
	}
	return map[string]any{"overdue": len(overdue), "notified": notified}, nil
}

func (r *Reminders) name(ctx context.Context, id string) string {
	a, err := r.directory.Get(ctx, id)
	if err != nil {
		return id
	}
	return a.FullName()
}

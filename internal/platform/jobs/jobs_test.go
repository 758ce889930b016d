package jobs

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/workflow"
)

type memRuns struct {
	mu   sync.Mutex
	runs []Run
}

func (m *memRuns) StartRun(ctx context.Context, jobType string, at time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := jobType + "-" + strconv.Itoa(len(m.runs))
	m.runs = append(m.runs, Run{ID: id, JobType: jobType, Status: RunRunning, StartedAt: at})
	return id, nil
}

func (m *memRuns) FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			m.runs[i].Status = status
			m.runs[i].Details = details
			m.runs[i].CompletedAt = &at
		}
	}
	return nil
}

func (m *memRuns) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Run(nil), m.runs...), nil
}

type overdue []workflow.Assignment

func (o overdue) Overdue(ctx context.Context, at time.Time) ([]workflow.Assignment, error) {
	return o, nil
}

type directory struct{}

func (directory) Get(ctx context.Context, id string) (identity.Actor, error) {
	return identity.Actor{ID: id, FirstName: "Eli", LastName: "Employee"}, nil
}

type outbox struct {
	sent []map[string]any
	to   []string
}

func (o *outbox) Send(ctx context.Context, recipientID, kind string, payload map[string]any) error {
	o.to = append(o.to, recipientID)
	o.sent = append(o.sent, payload)
	return nil
}

func TestRunNowRecordsOutcome(t *testing.T) {
	runs := &memRuns{}
	svc := New(runs)

	if _, err := svc.RunNow(context.Background(), "ok", func(context.Context) (any, error) {
		return map[string]int{"n": 1}, nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := svc.RunNow(context.Background(), "bad", func(context.Context) (any, error) {
		return nil, errors.New("boom")
	}); err == nil {
		t.Fatal("expected job error to surface")
	}

	list, err := svc.Runs(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(list) != 2 || list[0].Status != RunCompleted || list[1].Status != RunFailed {
		t.Fatalf("unexpected runs %+v", list)
	}
	if string(list[0].Details) != `{"n":1}` || list[0].CompletedAt == nil {
		t.Fatalf("unexpected details %+v", list[0])
	}
}

func TestRemindersNotifyReviewerOncePerWindow(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	source := overdue{{
		ID:         "as1",
		EmployeeID: "e1",
		ReviewerID: "m1",
		DueDate:    now.AddDate(0, 0, -3),
		Status:     workflow.AssignmentPending,
	}}
	box := &outbox{}
	r := NewReminders(source, directory{}, box)
	r.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	if len(box.sent) != 1 || box.to[0] != "m1" {
		t.Fatalf("expected a single reminder to m1, got %v", box.to)
	}
	if box.sent[0]["employeeName"] != "Eli Employee" || box.sent[0]["dueDate"] != "2025-05-07" {
		t.Fatalf("unexpected payload %v", box.sent[0])
	}

	r.now = func() time.Time { return now.Add(25 * time.Hour) }
	details, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(box.sent) != 2 {
		t.Fatalf("expected a second reminder after the window, got %d", len(box.sent))
	}
	if got := details.(map[string]any)["notified"]; got != 1 {
		t.Fatalf("expected 1 notified, got %v", got)
	}
}

type purger struct {
	before []time.Time
	n      int64
}

func (p *purger) PurgeReadNotifications(ctx context.Context, before time.Time) (int64, error) {
	p.before = append(p.before, before)
	return p.n, nil
}

func (p *purger) PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error) {
	p.before = append(p.before, before)
	return p.n, nil
}

func TestRetentionSkipsDisabledWindows(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	inbox := &purger{n: 3}
	events := &purger{n: 7}
	r := NewRetention(inbox, events, 24*time.Hour, 0)
	r.now = func() time.Time { return now }

	details, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(inbox.before) != 1 || !inbox.before[0].Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("unexpected notification cutoff %v", inbox.before)
	}
	if len(events.before) != 0 {
		t.Fatalf("audit purge should be disabled, got %v", events.before)
	}
	got := details.(map[string]any)
	if got["notifications"] != int64(3) || got["auditEvents"] != int64(0) {
		t.Fatalf("unexpected details %v", got)
	}
}

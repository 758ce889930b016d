// Package reports renders review data for people outside the API: dashboards,
// spreadsheet exports and printable reviews.
package reports

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/progress"
	"hrperf/internal/domain/workflow"
)

type Workflow interface {
	ListAssignments(ctx context.Context, actor identity.Actor, filter workflow.AssignmentFilter) ([]workflow.AssignmentView, error)
	ListReviews(ctx context.Context, actor identity.Actor, filter workflow.ReviewFilter) ([]workflow.ReviewView, error)
	GetReview(ctx context.Context, actor identity.Actor, id string) (workflow.ReviewView, error)
	GetTemplate(ctx context.Context, actor identity.Actor, id string) (workflow.Template, error)
}

type Goals interface {
	List(ctx context.Context, actor identity.Actor, filter progress.Filter) ([]progress.View, error)
}

type Directory interface {
	Get(ctx context.Context, id string) (identity.Actor, error)
}

type Service struct {
	workflow  Workflow
	goals     Goals
	directory Directory
	now       func() time.Time
}

func NewService(wf Workflow, goals Goals, directory Directory) *Service {
	return &Service{workflow: wf, goals: goals, directory: directory, now: func() time.Time { return time.Now().UTC() }}
}

// Dashboard is the per-actor summary shown on the landing page.
type Dashboard struct {
	OpenAssignments     int `json:"openAssignments"`
	OverdueAssignments  int `json:"overdueAssignments"`
	ReviewsToComplete   int `json:"reviewsToComplete"`
	AwaitingAcknowledge int `json:"awaitingAcknowledgement"`
	ActiveGoals         int `json:"activeGoals"`
	GoalsAtRisk         int `json:"goalsAtRisk"`
}

func (s *Service) Dashboard(ctx context.Context, actor identity.Actor) (Dashboard, error) {
	var out Dashboard
	assignments, err := s.workflow.ListAssignments(ctx, actor, workflow.AssignmentFilter{
		Statuses: []workflow.AssignmentStatus{workflow.AssignmentPending, workflow.AssignmentInProgress},
	})
	if err != nil {
		return out, err
	}
	for _, a := range assignments {
		out.OpenAssignments++
		if a.Overdue {
			out.OverdueAssignments++
		}
	}

	reviews, err := s.workflow.ListReviews(ctx, actor, workflow.ReviewFilter{})
	if err != nil {
		return out, err
	}
	for _, r := range reviews {
		switch {
		case r.Status.Editable() && r.ReviewerID == actor.ID:
			out.ReviewsToComplete++
		case r.Status == workflow.ReviewCompleted && r.EmployeeID == actor.ID:
			out.AwaitingAcknowledge++
		}
	}

	goals, err := s.goals.List(ctx, actor, progress.Filter{})
	if err != nil {
		return out, err
	}
	for _, g := range goals {
		if g.Status.Terminal() {
			continue
		}
		out.ActiveGoals++
		if g.Status == progress.StatusAtRisk {
			out.GoalsAtRisk++
		}
	}
	return out, nil
}

// AssignmentWorkbook exports the assignments visible to actor as xlsx.
func (s *Service) AssignmentWorkbook(ctx context.Context, actor identity.Actor, filter workflow.AssignmentFilter) (*bytes.Buffer, error) {
	assignments, err := s.workflow.ListAssignments(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	templates := map[string]string{}
	rows := make([]AssignmentRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, AssignmentRow{
			Employee:      s.name(ctx, names, a.EmployeeID),
			Reviewer:      s.name(ctx, names, a.ReviewerID),
			Template:      s.templateName(ctx, actor, templates, a.TemplateID),
			Status:        string(a.Status),
			DueDate:       a.DueDate,
			PeriodStart:   a.ReviewPeriod.Start,
			PeriodEnd:     a.ReviewPeriod.End,
			TimeRemaining: a.TimeRemaining,
			Overdue:       a.Overdue,
		})
	}
	return WriteAssignmentWorkbook(rows)
}

// ReviewPDF renders one review the actor may read.
func (s *Service) ReviewPDF(ctx context.Context, actor identity.Actor, reviewID string) (*bytes.Buffer, error) {
	review, err := s.workflow.GetReview(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	doc := ReviewDocument{
		Review:       review,
		EmployeeName: s.name(ctx, names, review.EmployeeID),
		ReviewerName: s.name(ctx, names, review.ReviewerID),
		GeneratedAt:  s.now(),
	}
	var buf bytes.Buffer
	if err := WriteReviewPDF(&buf, doc); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (s *Service) name(ctx context.Context, cache map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := cache[id]; ok {
		return n
	}
	a, err := s.directory.Get(ctx, id)
	if err != nil {
		slog.Warn("report name lookup failed", "actorId", id, "err", err)
		cache[id] = id
		return id
	}
	cache[id] = a.FullName()
	return cache[id]
}

func (s *Service) templateName(ctx context.Context, actor identity.Actor, cache map[string]string, id string) string {
	if n, ok := cache[id]; ok {
		return n
	}
	t, err := s.workflow.GetTemplate(ctx, actor, id)
	if err != nil {
		cache[id] = id
		return id
	}
	cache[id] = t.Name
	return t.Name
}

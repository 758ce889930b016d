package workflow

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/domain/progress"
)

// CheckIn appends a progress snapshot to an ongoing review and forwards the
// embedded goal updates. The snapshot is kept even when goal updates fail;
// in that case the result comes back with a partial failure error.
func (s *Service) CheckIn(ctx context.Context, actor identity.Actor, id string, in CheckInInput) (CheckInResult, error) {
	var before Review
	updated, err := s.store.UpdateReview(ctx, id, func(r *Review) error {
		before = *r
		if err := requireReviewerOrAdmin(actor, r.ReviewerID); err != nil {
			return err
		}
		if !r.IsOngoing {
			return apperr.InvalidTransition("review", string(r.Status), actionCheckIn)
		}
		if err := guardEditable(*r, actionCheckIn); err != nil {
			return err
		}
		now := s.now()
		snap := Snapshot{
			Date:             now,
			Goals:            slices.Clone(in.Goals),
			KPIs:             slices.Clone(in.KPIs),
			ManagerComments:  strings.TrimSpace(in.ManagerComments),
			EmployeeComments: strings.TrimSpace(in.EmployeeComments),
			RecordedBy:       actor.ID,
		}
		if in.Date != nil && !in.Date.IsZero() {
			snap.Date = *in.Date
		}
		r.ProgressSnapshots = append(r.ProgressSnapshots, snap)
		if in.NextCheckInDate != nil {
			r.NextCheckInDate = in.NextCheckInDate
		}
		if r.Status == ReviewDraft {
			r.Status = ReviewInProgress
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return CheckInResult{}, err
	}
	s.after(ctx, actor, "review", "checkin", id, before.Status, updated.Status)

	result := CheckInResult{Review: NewReviewView(updated), Goals: s.forwardGoals(ctx, actor, in.Goals)}
	s.notify(ctx, updated.EmployeeID, notifications.KindReviewCheckIn, map[string]any{"reviewId": id})
	if failed := result.Failed(); len(failed) > 0 {
		return result, apperr.PartialFailure("check-in saved but some goal updates failed", result.Goals)
	}
	return result, nil
}

// forwardGoals applies each goal update independently, with bounded
// concurrency, and reports the outcome per goal.
func (s *Service) forwardGoals(ctx context.Context, actor identity.Actor, goals []SnapshotGoal) []GoalOutcome {
	outcomes := make([]GoalOutcome, 0, len(goals))
	for _, g := range goals {
		if g.GoalID != "" {
			outcomes = append(outcomes, GoalOutcome{GoalID: g.GoalID})
		}
	}
	if len(outcomes) == 0 {
		return outcomes
	}

	var group errgroup.Group
	group.SetLimit(s.checkInWorkers)
	i := 0
	for _, g := range goals {
		if g.GoalID == "" {
			continue
		}
		idx, update := i, g
		i++
		group.Go(func() error {
			outcomes[idx] = s.forwardGoal(ctx, actor, update)
			return nil
		})
	}
	_ = group.Wait()
	return outcomes
}

func (s *Service) forwardGoal(ctx context.Context, actor identity.Actor, g SnapshotGoal) GoalOutcome {
	out := GoalOutcome{GoalID: g.GoalID}
	if s.goals == nil {
		out.Error = "goal tracking is unavailable"
		return out
	}
	if g.Progress == nil {
		out.Error = "progress is required"
		return out
	}
	view, err := s.goals.RecordProgress(ctx, actor, g.GoalID, progress.RecordInput{
		Progress: *g.Progress,
		Status:   g.Status,
		Notes:    g.Notes,
	})
	if err != nil {
		slog.Warn("check-in goal update failed", "goalId", g.GoalID, "err", err)
		out.Error = err.Error()
		return out
	}
	out.Updated = true
	out.Status = view.Status
	out.Progress = view.Progress
	return out
}

package progress

import (
	"math"
	"time"

	"hrperf/internal/domain/apperr"
)

// DeriveStatus maps a progress value to its status.
func DeriveStatus(progress float64) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Resolve picks the status for a recorded update. An explicit At Risk or
// Canceled pins the goal; any other explicit status clears the pin. Without an
// explicit status a Canceled goal stays Canceled and an At Risk goal stays At
// Risk until it reaches 100.
func Resolve(current Status, progress float64, requested Status) Status {
	if requested != "" {
		if requested.Pinned() {
			return requested
		}
		return DeriveStatus(progress)
	}
	switch current {
	case StatusCanceled:
		return StatusCanceled
	case StatusAtRisk:
		if progress >= 100 {
			return StatusCompleted
		}
		return StatusAtRisk
	}
	return DeriveStatus(progress)
}

func validateUpdate(u Update) error {
	v := apperr.NewValidator()
	v.Range("progress", u.Progress, 0, 100)
	v.OneOf("status", string(u.Status), Statuses...)
	v.Required("updatedBy", u.UpdatedBy)
	return v.Err()
}

// Record applies an update to g and appends one history entry, whether or not
// the value changed. It returns the appended entry.
func Record(g *Goal, u Update) (HistoryEntry, error) {
	if err := validateUpdate(u); err != nil {
		return HistoryEntry{}, err
	}
	at := u.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	status := Resolve(g.Status, u.Progress, u.Status)
	entry := HistoryEntry{
		Date:      at,
		Progress:  u.Progress,
		Status:    status,
		UpdatedBy: u.UpdatedBy,
		Notes:     u.Notes,
	}
	g.Progress = u.Progress
	g.Status = status
	g.ProgressHistory = append(g.ProgressHistory, entry)
	g.UpdatedAt = at
	return entry, nil
}

// TimeRemaining is the number of whole days left until the target date,
// rounded up. It is zero for finished goals and goals without a target.
func TimeRemaining(g Goal, now time.Time) int {
	if g.TargetDate == nil || g.Status.Terminal() {
		return 0
	}
	left := g.TargetDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

func DaysOverdue(g Goal, now time.Time) int {
	if g.TargetDate == nil || g.Status.Terminal() {
		return 0
	}
	late := now.Sub(*g.TargetDate)
	if late <= 0 {
		return 0
	}
	return int(late.Hours() / 24)
}

func NewView(g Goal, now time.Time) View {
	return View{Goal: g, TimeRemaining: TimeRemaining(g, now), DaysOverdue: DaysOverdue(g, now)}
}

package progress

import (
	"testing"
	"time"

	"hrperf/internal/domain/apperr"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestRecordSameValueTwiceAppendsTwoEntries(t *testing.T) {
	g := Goal{Status: StatusNotStarted}
	for i := 0; i < 2; i++ {
		if _, err := Record(&g, Update{Progress: 45, UpdatedBy: "u1", At: fixedNow}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(g.ProgressHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(g.ProgressHistory))
	}
	if g.Status != StatusInProgress || g.Progress != 45 {
		t.Fatalf("expected In Progress at 45, got %s at %v", g.Status, g.Progress)
	}
}

func TestRecordFullProgressCompletesGoal(t *testing.T) {
	target := fixedNow.Add(72 * time.Hour)
	g := Goal{Status: StatusInProgress, Progress: 60, TargetDate: &target}

	entry, err := Record(&g, Update{Progress: 100, UpdatedBy: "u1", At: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != StatusCompleted || g.Status != StatusCompleted {
		t.Fatalf("expected Completed, got entry=%s goal=%s", entry.Status, g.Status)
	}
	if got := TimeRemaining(g, fixedNow); got != 0 {
		t.Fatalf("expected no time remaining on a completed goal, got %d", got)
	}
}

func TestRecordRejectsOutOfRangeProgress(t *testing.T) {
	g := Goal{Status: StatusNotStarted}
	for _, value := range []float64{-1, 100.5} {
		_, err := Record(&g, Update{Progress: value, UpdatedBy: "u1"})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %v, got %v", value, err)
		}
	}
	if len(g.ProgressHistory) != 0 {
		t.Fatalf("rejected updates must not touch history, got %d entries", len(g.ProgressHistory))
	}
}

func TestRecordRequiresUpdater(t *testing.T) {
	g := Goal{}
	if _, err := Record(&g, Update{Progress: 10}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		current   Status
		progress  float64
		requested Status
		want      Status
	}{
		{"zero is not started", StatusInProgress, 0, "", StatusNotStarted},
		{"partial is in progress", StatusNotStarted, 30, "", StatusInProgress},
		{"full is completed", StatusInProgress, 100, "", StatusCompleted},
		{"explicit at risk pins", StatusInProgress, 40, StatusAtRisk, StatusAtRisk},
		{"at risk survives progress", StatusAtRisk, 70, "", StatusAtRisk},
		{"at risk clears at 100", StatusAtRisk, 100, "", StatusCompleted},
		{"canceled is sticky", StatusCanceled, 100, "", StatusCanceled},
		{"explicit derived status clears pin", StatusAtRisk, 20, StatusInProgress, StatusInProgress},
		{"explicit status follows progress", StatusNotStarted, 100, StatusInProgress, StatusCompleted},
		{"explicit cancel", StatusInProgress, 50, StatusCanceled, StatusCanceled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.current, tc.progress, tc.requested); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTimeRemainingRoundsUp(t *testing.T) {
	target := fixedNow.Add(36 * time.Hour)
	g := Goal{Status: StatusInProgress, TargetDate: &target}
	if got := TimeRemaining(g, fixedNow); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := DaysOverdue(g, fixedNow); got != 0 {
		t.Fatalf("expected no overdue days, got %d", got)
	}

	past := fixedNow.Add(-50 * time.Hour)
	g.TargetDate = &past
	if got := TimeRemaining(g, fixedNow); got != 0 {
		t.Fatalf("expected 0 days remaining, got %d", got)
	}
	if got := DaysOverdue(g, fixedNow); got != 2 {
		t.Fatalf("expected 2 overdue days, got %d", got)
	}
}

func TestTimeRemainingWithoutTarget(t *testing.T) {
	if got := TimeRemaining(Goal{Status: StatusInProgress}, fixedNow); got != 0 {
		t.Fatalf("expected 0 without target date, got %d", got)
	}
}

package workflow

import (
	"testing"
	"time"

	"hrperf/internal/domain/apperr"
)

func intPtr(v int) *int { return &v }

func requiredQuestions(responses ...any) []ReviewSection {
	questions := make([]ReviewQuestion, 0, len(responses))
	for _, r := range responses {
		questions = append(questions, ReviewQuestion{Text: "q", Type: QuestionText, Required: true, Response: r})
	}
	questions = append(questions, ReviewQuestion{Text: "optional", Type: QuestionText, Response: "ignored"})
	return []ReviewSection{{Title: "Core", Questions: questions}}
}

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		name   string
		review Review
		want   int
	}{
		{"draft", Review{Status: ReviewDraft, Sections: requiredQuestions("a")}, 10},
		{"completed", Review{Status: ReviewCompleted}, 100},
		{"acknowledged", Review{Status: ReviewAcknowledged}, 100},
		{"in progress without required", Review{Status: ReviewInProgress}, 50},
		{"submitted without required", Review{Status: ReviewSubmitted}, 20},
		{"one of three answered", Review{Status: ReviewInProgress, Sections: requiredQuestions("yes", nil, "")}, 46},
		{"all answered caps at 90", Review{Status: ReviewSubmitted, Sections: requiredQuestions("a", 4.0, true)}, 90},
		{"none answered", Review{Status: ReviewInProgress, Sections: requiredQuestions(nil, nil)}, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompletionPercentage(tc.review); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAverageRatingExcludesOverall(t *testing.T) {
	if AverageRating(Ratings{Overall: intPtr(5)}) != nil {
		t.Fatal("expected nil average when only overall is set")
	}
	avg := AverageRating(Ratings{Performance: intPtr(4), Communication: intPtr(5), Overall: intPtr(1)})
	if avg == nil || *avg != 4.5 {
		t.Fatalf("expected 4.5, got %v", avg)
	}
}

func TestMaterializeSharesNoMemory(t *testing.T) {
	src := []Section{{
		Title: "Delivery",
		Questions: []Question{
			{Text: "Pick one", Type: QuestionMultipleChoice, Options: []string{"a", "b"}},
		},
	}}
	out := Materialize(src)
	src[0].Title = "Changed"
	src[0].Questions[0].Text = "Changed"
	src[0].Questions[0].Options[0] = "z"

	if out[0].Title != "Delivery" || out[0].Questions[0].Text != "Pick one" || out[0].Questions[0].Options[0] != "a" {
		t.Fatalf("materialized sections changed with the template: %+v", out)
	}
	if out[0].Questions[0].Response != nil {
		t.Fatalf("expected empty response, got %v", out[0].Questions[0].Response)
	}
}

func TestReviewTypeForFrequency(t *testing.T) {
	cases := map[Frequency]string{
		FrequencySemiAnnual: "Mid-Year",
		FrequencyQuarterly:  "Quarterly",
		FrequencyMonthly:    "Monthly",
		FrequencyAnnual:     "Annual",
	}
	for freq, want := range cases {
		if got := reviewTypeFor(freq); got != want {
			t.Fatalf("%s: expected %s, got %s", freq, want, got)
		}
	}
	if !ongoingType("Monthly") || ongoingType("Annual") {
		t.Fatal("only monthly and quarterly reviews are ongoing")
	}
}

func TestTransitionTables(t *testing.T) {
	if _, err := nextAssignmentStatus(AssignmentInProgress, actionCancel); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected in-progress cancel to be rejected, got %v", err)
	}
	if next, err := nextAssignmentStatus(AssignmentPending, actionCancel); err != nil || next != AssignmentCanceled {
		t.Fatalf("expected Canceled, got %s (%v)", next, err)
	}
	if next, err := nextReviewStatus(ReviewCompleted, actionAcknowledge); err != nil || next != ReviewAcknowledged {
		t.Fatalf("expected Acknowledged, got %s (%v)", next, err)
	}
	_, err := nextReviewStatus(ReviewAcknowledged, actionComplete)
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindInvalidTransition || e.State != string(ReviewAcknowledged) {
		t.Fatalf("expected invalid transition from Acknowledged, got %v", err)
	}
}

func TestCheckResponse(t *testing.T) {
	rating := ReviewQuestion{Type: QuestionRating}
	choice := ReviewQuestion{Type: QuestionMultipleChoice, Options: []string{"low", "high"}}
	cases := []struct {
		name     string
		question ReviewQuestion
		response any
		ok       bool
	}{
		{"rating int", rating, 4, true},
		{"rating float whole", rating, 5.0, true},
		{"rating fraction", rating, 3.5, false},
		{"rating out of range", rating, 6, false},
		{"yesno bool", ReviewQuestion{Type: QuestionYesNo}, true, true},
		{"yesno text", ReviewQuestion{Type: QuestionYesNo}, "yes", false},
		{"choice valid", choice, "high", true},
		{"choice unknown", choice, "medium", false},
		{"text", ReviewQuestion{Type: QuestionText}, "fine", true},
		{"text number", ReviewQuestion{Type: QuestionText}, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := checkResponse(tc.question, tc.response)
			if (reason == "") != tc.ok {
				t.Fatalf("expected ok=%v, got reason %q", tc.ok, reason)
			}
		})
	}
}

func TestAssignmentViewOverdue(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	a := Assignment{Status: AssignmentPending, DueDate: now.Add(-time.Hour)}
	view := NewAssignmentView(a, now)
	if !view.Overdue || view.CompletionPercentage != 0 {
		t.Fatalf("expected overdue pending assignment, got %+v", view)
	}
	a.Status = AssignmentCompleted
	view = NewAssignmentView(a, now)
	if view.Overdue || view.TimeRemaining != 0 || view.CompletionPercentage != 100 {
		t.Fatalf("completed assignment should not be overdue, got %+v", view)
	}
}

func TestBuildStats(t *testing.T) {
	stats := BuildStats([]Review{
		{Status: ReviewCompleted, ReviewType: "Annual", Ratings: Ratings{Overall: intPtr(4), Performance: intPtr(4)}},
		{Status: ReviewDraft, ReviewType: "Monthly", Ratings: Ratings{Overall: intPtr(2), Teamwork: intPtr(2)}},
		{Status: ReviewDraft, ReviewType: "Monthly"},
	})
	if stats.Total != 3 || stats.ByStatus[ReviewDraft] != 2 || stats.ByType["Monthly"] != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.AverageOverall == nil || *stats.AverageOverall != 3 {
		t.Fatalf("expected overall average 3, got %v", stats.AverageOverall)
	}
	if stats.AverageRating == nil || *stats.AverageRating != 3 {
		t.Fatalf("expected rating average 3, got %v", stats.AverageRating)
	}
}

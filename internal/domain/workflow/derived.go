package workflow

import (
	"math"
	"time"
)

func assignmentTimeRemaining(a Assignment, now time.Time) int {
	if !a.Status.Open() {
		return 0
	}
	return int(math.Ceil(a.DueDate.Sub(now).Hours() / 24))
}

func assignmentCompletion(a Assignment) int {
	switch a.Status {
	case AssignmentCompleted:
		return 100
	case AssignmentInProgress:
		return 50
	default:
		return 0
	}
}

func NewAssignmentView(a Assignment, now time.Time) AssignmentView {
	return AssignmentView{
		Assignment:           a,
		TimeRemaining:        assignmentTimeRemaining(a, now),
		CompletionPercentage: assignmentCompletion(a),
		Overdue:              a.Status.Open() && now.After(a.DueDate),
	}
}

// AverageRating averages the category ratings that are set, excluding the
// overall rating. It is nil when none are set.
func AverageRating(r Ratings) *float64 {
	var sum, n int
	for _, v := range []*int{r.Performance, r.Communication, r.Teamwork, r.Leadership, r.TechnicalSkills} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// CompletionPercentage estimates how far along a review is from its answered
// required questions. Finished reviews are 100 and open ones cap at 90.
func CompletionPercentage(r Review) int {
	switch r.Status {
	case ReviewCompleted, ReviewAcknowledged:
		return 100
	case ReviewDraft:
		return 10
	}
	var required, answered int
	for _, section := range r.Sections {
		for _, q := range section.Questions {
			if !q.Required {
				continue
			}
			required++
			if answeredResponse(q.Response) {
				answered++
			}
		}
	}
	if required == 0 {
		if r.Status == ReviewInProgress {
			return 50
		}
		return 20
	}
	pct := int(math.Floor(float64(answered)/float64(required)*80)) + 20
	return min(pct, 90)
}

func answeredResponse(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	default:
		return true
	}
}

func NewReviewView(r Review) ReviewView {
	return ReviewView{Review: r, AverageRating: AverageRating(r.Ratings), CompletionPercentage: CompletionPercentage(r)}
}

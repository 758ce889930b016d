package workflow

import (
	"time"

	"hrperf/internal/domain/progress"
)

type TemplateInput struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Frequency   Frequency      `json:"frequency" yaml:"frequency"`
	Status      TemplateStatus `json:"status" yaml:"status"`
	Sections    []Section      `json:"sections" yaml:"sections"`
	Features    Features       `json:"features" yaml:"features"`
}

type AssignInput struct {
	TemplateID   string    `json:"templateId"`
	EmployeeID   string    `json:"employeeId"`
	ReviewerID   string    `json:"reviewerId"`
	DueDate      time.Time `json:"dueDate"`
	ReviewPeriod Period    `json:"reviewPeriod"`
	Notes        string    `json:"notes"`
}

type AssignmentPatch struct {
	DueDate *time.Time `json:"dueDate"`
	Notes   *string    `json:"notes"`
}

type CreateReviewInput struct {
	EmployeeID string    `json:"employeeId"`
	ReviewType string    `json:"reviewType"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TemplateID string    `json:"templateId"`
	Features   Features  `json:"features"`
	GoalIDs    []string  `json:"goals"`
}

type ResponseInput struct {
	Section  int `json:"section"`
	Question int `json:"question"`
	Response any `json:"response"`
}

// ReviewEdit carries the editable parts of a review; nil fields are left untouched.
type ReviewEdit struct {
	Ratings   *Ratings        `json:"ratings"`
	Feedback  *Feedback       `json:"feedback"`
	Responses []ResponseInput `json:"responses"`
	GoalIDs   []string        `json:"goals"`
	KPIs      []ReviewKPI     `json:"kpis"`
}

type CheckInInput struct {
	Date             *time.Time     `json:"date"`
	Goals            []SnapshotGoal `json:"goals"`
	KPIs             []SnapshotKPI  `json:"kpis"`
	ManagerComments  string         `json:"managerComments"`
	EmployeeComments string         `json:"employeeComments"`
	NextCheckInDate  *time.Time     `json:"nextCheckInDate"`
}

type GoalOutcome struct {
	GoalID   string          `json:"goalId"`
	Updated  bool            `json:"updated"`
	Status   progress.Status `json:"status,omitempty"`
	Progress float64         `json:"progress,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type CheckInResult struct {
	Review ReviewView    `json:"review"`
	Goals  []GoalOutcome `json:"goals"`
}

// Failed lists the outcomes whose goal update did not apply.
func (r CheckInResult) Failed() []GoalOutcome {
	var out []GoalOutcome
	for _, g := range r.Goals {
		if !g.Updated {
			out = append(out, g)
		}
	}
	return out
}

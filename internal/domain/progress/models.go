package progress

import "time"

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusAtRisk     Status = "At Risk"
	StatusCanceled   Status = "Canceled"
)

var Statuses = []string{
	string(StatusNotStarted), string(StatusInProgress), string(StatusCompleted),
	string(StatusAtRisk), string(StatusCanceled),
}

// Pinned statuses are set by a person and are never derived from progress.
func (s Status) Pinned() bool {
	return s == StatusAtRisk || s == StatusCanceled
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type Cycle string

const (
	CycleMonthly   Cycle = "Monthly"
	CycleQuarterly Cycle = "Quarterly"
	CycleAnnual    Cycle = "Annual"
)

var Cycles = []string{string(CycleMonthly), string(CycleQuarterly), string(CycleAnnual)}

type HistoryEntry struct {
	Date      time.Time `json:"date"`
	Progress  float64   `json:"progress"`
	Status    Status    `json:"status"`
	UpdatedBy string    `json:"updatedBy"`
	Notes     string    `json:"notes,omitempty"`
}

type Goal struct {
	ID              string         `json:"id"`
	EmployeeID      string         `json:"employeeId"`
	ReviewerID      string         `json:"reviewerId,omitempty"`
	ReviewID        string         `json:"reviewId,omitempty"`
	KPIID           string         `json:"linkedKpiId,omitempty"`
	CreatedByID     string         `json:"createdBy"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Notes           string         `json:"notes,omitempty"`
	Cycle           Cycle          `json:"cycle"`
	IsPrivate       bool           `json:"isPrivate"`
	TargetDate      *time.Time     `json:"targetDate,omitempty"`
	Status          Status         `json:"status"`
	Progress        float64        `json:"progress"`
	ProgressHistory []HistoryEntry `json:"progressHistory"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// View is a goal with the fields computed at read time.
type View struct {
	Goal
	TimeRemaining int `json:"timeRemaining"`
	DaysOverdue   int `json:"daysOverdue"`
}

type Update struct {
	Progress  float64
	Status    Status
	UpdatedBy string
	Notes     string
	At        time.Time
}

type Filter struct {
	EmployeeID  string
	EmployeeIDs []string
	ReviewerID  string
	ReviewID    string
	Status      Status
}

type CreateInput struct {
	EmployeeID  string     `json:"employeeId"`
	ReviewerID  string     `json:"reviewerId"`
	ReviewID    string     `json:"reviewId"`
	KPIID       string     `json:"linkedKpiId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Notes       string     `json:"notes"`
	Cycle       Cycle      `json:"cycle"`
	IsPrivate   bool       `json:"isPrivate"`
	TargetDate  *time.Time `json:"targetDate"`
	Progress    float64    `json:"progress"`
	Status      Status     `json:"status"`
}

// PatchInput carries field edits; nil fields are left untouched. Progress and
// status edits are routed through Record so they land in the history.
type PatchInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Notes       *string    `json:"notes"`
	Cycle       *Cycle     `json:"cycle"`
	IsPrivate   *bool      `json:"isPrivate"`
	TargetDate  *time.Time `json:"targetDate"`
	ReviewerID  *string    `json:"reviewerId"`
	KPIID       *string    `json:"linkedKpiId"`
	Progress    *float64   `json:"progress"`
	Status      *Status    `json:"status"`
}

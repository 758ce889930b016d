package workflow

import (
	"time"

	"hrperf/internal/domain/progress"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionRating         QuestionType = "rating"
	QuestionYesNo          QuestionType = "yesno"
	QuestionMultipleChoice QuestionType = "multiple-choice"
)

var QuestionTypes = []string{"text", "rating", "yesno", "multiple-choice"}

type Frequency string

const (
	FrequencyAnnual     Frequency = "Annual"
	FrequencySemiAnnual Frequency = "Semi-Annual"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencyMonthly    Frequency = "Monthly"
)

var Frequencies = []string{"Annual", "Semi-Annual", "Quarterly", "Monthly"}

type TemplateStatus string

const (
	TemplateActive   TemplateStatus = "Active"
	TemplateInactive TemplateStatus = "Inactive"
)

var TemplateStatuses = []string{"Active", "Inactive"}

type Question struct {
	Text     string       `json:"text" yaml:"text"`
	Type     QuestionType `json:"type" yaml:"type"`
	Required bool         `json:"required" yaml:"required"`
	Options  []string     `json:"options" yaml:"options"`
}

type Section struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Weight      float64    `json:"weight" yaml:"weight"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

type Features struct {
	SelfReview    bool `json:"includesSelfReview" yaml:"includesSelfReview"`
	Review360     bool `json:"includes360Review" yaml:"includes360Review"`
	ManagerReview bool `json:"includesManagerReview" yaml:"includesManagerReview"`
	Goals         bool `json:"includesGoals" yaml:"includesGoals"`
	KPIs          bool `json:"includesKPIs" yaml:"includesKPIs"`
}

type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Frequency   Frequency      `json:"frequency"`
	Status      TemplateStatus `json:"status"`
	Sections    []Section      `json:"sections"`
	Features    Features       `json:"features"`
	CreatedByID string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "Pending"
	AssignmentInProgress AssignmentStatus = "InProgress"
	AssignmentCompleted  AssignmentStatus = "Completed"
	AssignmentCanceled   AssignmentStatus = "Canceled"
)

type Assignment struct {
	ID              string           `json:"id"`
	TemplateID      string           `json:"templateId"`
	EmployeeID      string           `json:"employeeId"`
	ReviewerID      string           `json:"reviewerId"`
	AssignedByID    string           `json:"assignedBy"`
	DueDate         time.Time        `json:"dueDate"`
	ReviewPeriod    Period           `json:"reviewPeriod"`
	Status          AssignmentStatus `json:"status"`
	CreatedReviewID string           `json:"createdReview,omitempty"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	CompletionDate  *time.Time       `json:"completionDate,omitempty"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type ReviewStatus string

const (
	ReviewDraft        ReviewStatus = "Draft"
	ReviewSubmitted    ReviewStatus = "Submitted"
	ReviewInProgress   ReviewStatus = "InProgress"
	ReviewCompleted    ReviewStatus = "Completed"
	ReviewAcknowledged ReviewStatus = "Acknowledged"
)

var ReviewTypes = []string{"Annual", "Quarterly", "Mid-Year", "Probation", "Monthly"}

type ReviewQuestion struct {
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []string     `json:"options"`
	Response any          `json:"response"`
}

type ReviewSection struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	Questions   []ReviewQuestion `json:"questions"`
}

type Ratings struct {
	Performance     *int `json:"performanceRating,omitempty"`
	Communication   *int `json:"communicationRating,omitempty"`
	Teamwork        *int `json:"teamworkRating,omitempty"`
	Leadership      *int `json:"leadershipRating,omitempty"`
	TechnicalSkills *int `json:"technicalSkillsRating,omitempty"`
	Overall         *int `json:"overallRating,omitempty"`
}

type Feedback struct {
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areasForImprovement"`
	Comments            string `json:"comments"`
}

type Acknowledgement struct {
	Acknowledged     bool      `json:"acknowledged"`
	Date             time.Time `json:"date"`
	EmployeeComments string    `json:"employeeComments"`
}

type ReviewKPI struct {
	KPIID        string `json:"kpiId"`
	CurrentValue any    `json:"currentValue"`
	Notes        string `json:"notes"`
}

type SnapshotGoal struct {
	GoalID   string          `json:"goalId"`
	Title    string          `json:"title"`
	Progress *float64        `json:"progress,omitempty"`
	Status   progress.Status `json:"status,omitempty"`
	Notes    string          `json:"notes"`
}

type SnapshotKPI struct {
	KPIID        string `json:"kpiId"`
	Title        string `json:"title"`
	CurrentValue any    `json:"currentValue"`
	Target       any    `json:"target"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// Snapshot is one check-in on an ongoing review. Snapshots are append-only.
type Snapshot struct {
	Date             time.Time      `json:"date"`
	Goals            []SnapshotGoal `json:"goals"`
	KPIs             []SnapshotKPI  `json:"kpis"`
	ManagerComments  string         `json:"managerComments"`
	EmployeeComments string         `json:"employeeComments"`
	RecordedBy       string         `json:"recordedBy"`
}

type Review struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employeeId"`
	ReviewerID        string           `json:"reviewerId"`
	TemplateID        string           `json:"templateId,omitempty"`
	AssignmentID      string           `json:"assignmentId,omitempty"`
	ReviewType        string           `json:"reviewType"`
	ReviewPeriod      Period           `json:"reviewPeriod"`
	Status            ReviewStatus     `json:"status"`
	Sections          []ReviewSection  `json:"sections"`
	Ratings           Ratings          `json:"ratings"`
	Feedback          Feedback         `json:"feedback"`
	GoalIDs           []string         `json:"goals"`
	KPIs              []ReviewKPI      `json:"kpis"`
	ProgressSnapshots []Snapshot       `json:"progressSnapshots"`
	Acknowledgement   *Acknowledgement `json:"acknowledgement,omitempty"`
	Features          Features         `json:"features"`
	IsOngoing         bool             `json:"isOngoing"`
	NextCheckInDate   *time.Time       `json:"nextCheckInDate,omitempty"`
	SubmittedAt       *time.Time       `json:"submittedAt,omitempty"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type AssignmentView struct {
	Assignment
	TimeRemaining        int  `json:"timeRemaining"`
	CompletionPercentage int  `json:"completionPercentage"`
	Overdue              bool `json:"overdue"`
}

type ReviewView struct {
	Review
	AverageRating        *float64 `json:"averageRating"`
	CompletionPercentage int      `json:"completionPercentage"`
}

type TemplateFilter struct {
	Status TemplateStatus
}

type AssignmentFilter struct {
	EmployeeID   string
	ReviewerID   string
	AssignedByID string
	TemplateID   string
	Statuses     []AssignmentStatus
	DueBefore    *time.Time
}

type ReviewFilter struct {
	EmployeeID string
	ReviewerID string
	Status     ReviewStatus
	ReviewType string
}

type ReviewStats struct {
	Total          int                  `json:"totalReviews"`
	ByStatus       map[ReviewStatus]int `json:"byStatus"`
	ByType         map[string]int       `json:"byType"`
	AverageOverall *float64             `json:"averageOverall"`
	AverageRating  *float64             `json:"averageRating"`
}

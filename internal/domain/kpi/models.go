package kpi

import "time"

type Category string

const (
	CategoryPerformance Category = "Performance"
	CategoryDevelopment Category = "Development"
	CategoryBusiness    Category = "Business"
	CategoryCustomer    Category = "Customer"
	CategoryFinancial   Category = "Financial"
	CategoryTeam        Category = "Team"
	CategoryCustom      Category = "Custom"
)

var Categories = []string{"Performance", "Development", "Business", "Customer", "Financial", "Team", "Custom"}

var Frequencies = []string{"Monthly", "Quarterly", "Semi-Annual", "Annual"}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusArchived Status = "Archived"
)

var Statuses = []string{string(StatusActive), string(StatusInactive), string(StatusArchived)}

type KPI struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Target       string     `json:"target"`
	TargetValue  *float64   `json:"targetValue,omitempty"`
	Unit         string     `json:"unit"`
	Frequency    string     `json:"frequency"`
	DepartmentID string     `json:"departmentId,omitempty"`
	IsGlobal     bool       `json:"isGlobal"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Status       Status     `json:"status"`
	CreatedByID  string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Filter struct {
	DepartmentID  string
	IncludeGlobal bool
	Category      Category
	Status        Status
}

type Input struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Target       string     `json:"target"`
	TargetValue  *float64   `json:"targetValue"`
	Unit         string     `json:"unit"`
	Frequency    string     `json:"frequency"`
	DepartmentID string     `json:"departmentId"`
	IsGlobal     bool       `json:"isGlobal"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Status       Status     `json:"status"`
}

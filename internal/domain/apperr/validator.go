package apperr

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues and turns them into a single validation error.
type Validator struct {
	issues []FieldIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]FieldIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, FieldIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func (v *Validator) RequiredTime(field string, value time.Time) {
	if value.IsZero() {
		v.Add(field, "is required")
	}
}

func (v *Validator) Range(field string, value, min, max float64) {
	if value != value || value < min || value > max {
		v.Add(field, "must be between "+formatNumber(min)+" and "+formatNumber(max))
	}
}

func (v *Validator) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	v.Add(field, "must be one of "+strings.Join(allowed, ", "))
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(endField, "must be on or after "+startField)
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []FieldIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]FieldIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Err returns nil when nothing was collected.
func (v *Validator) Err() error {
	if !v.HasIssues() {
		return nil
	}
	return Validation(v.Issues()...)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

package apperr

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("start assignment: %w", InvalidTransition("assignment", "Completed", "start"))
	if KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %s", KindOf(err))
	}
	e, ok := As(err)
	if !ok || e.State != "Completed" {
		t.Fatalf("expected state Completed, got %+v", e)
	}
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatal("expected internal kind for untyped error")
	}
	if KindOf(nil) != "" {
		t.Fatal("expected empty kind for nil error")
	}
}

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("title", " ")
	v.Range("progress", 120, 0, 100)
	v.Range("weight", math.NaN(), 0, 100)
	v.OneOf("status", "Done", "Active", "Inactive")
	v.DateOrder("start", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "end", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	err := v.Err()
	e, ok := As(err)
	if !ok || e.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(e.Fields) != 5 {
		t.Fatalf("expected 5 issues, got %+v", e.Fields)
	}
	if e.Fields[0].Field != "end" || e.Fields[4].Field != "weight" {
		t.Fatalf("expected issues sorted by field, got %+v", e.Fields)
	}
	if e.Fields[1].Reason != "must be between 0 and 100" {
		t.Fatalf("unexpected range reason %q", e.Fields[1].Reason)
	}
}

func TestValidatorWithoutIssuesReturnsNil(t *testing.T) {
	v := NewValidator()
	v.Required("title", "Quarterly goals")
	if err := v.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

package workflow

import "hrperf/internal/domain/apperr"

const (
	actionStart       = "start"
	actionCancel      = "cancel"
	actionComplete    = "complete"
	actionSubmit      = "submit"
	actionAcknowledge = "acknowledge"
	actionEdit        = "edit"
	actionCheckIn     = "check in"
	actionDelete      = "delete"
	actionUpdate      = "update"
)

var assignmentTransitions = map[AssignmentStatus]map[string]AssignmentStatus{
	AssignmentPending:    {actionStart: AssignmentInProgress, actionCancel: AssignmentCanceled},
	AssignmentInProgress: {actionComplete: AssignmentCompleted},
}

var reviewTransitions = map[ReviewStatus]map[string]ReviewStatus{
	ReviewDraft:      {actionSubmit: ReviewSubmitted, actionComplete: ReviewCompleted},
	ReviewSubmitted:  {actionComplete: ReviewCompleted},
	ReviewInProgress: {actionComplete: ReviewCompleted},
	ReviewCompleted:  {actionAcknowledge: ReviewAcknowledged},
}

func nextAssignmentStatus(current AssignmentStatus, action string) (AssignmentStatus, error) {
	if next, ok := assignmentTransitions[current][action]; ok {
		return next, nil
	}
	return current, apperr.InvalidTransition("assignment", string(current), action)
}

func nextReviewStatus(current ReviewStatus, action string) (ReviewStatus, error) {
	if next, ok := reviewTransitions[current][action]; ok {
		return next, nil
	}
	return current, apperr.InvalidTransition("review", string(current), action)
}

// Editable reports whether the review content may still change.
func (s ReviewStatus) Editable() bool {
	return s == ReviewDraft || s == ReviewSubmitted || s == ReviewInProgress
}

func guardEditable(r Review, action string) error {
	if !r.Status.Editable() {
		return apperr.InvalidTransition("review", string(r.Status), action)
	}
	return nil
}

// Open reports whether the assignment still awaits work.
func (s AssignmentStatus) Open() bool {
	return s == AssignmentPending || s == AssignmentInProgress
}

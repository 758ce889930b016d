package notifications

const (
	KindReviewAssigned     = "review_assigned"
	KindReviewStarted      = "review_started"
	KindReviewSubmitted    = "review_submitted"
	KindReviewCompleted    = "review_completed"
	KindReviewAcknowledged = "review_acknowledged"
	KindReviewCheckIn      = "review_checkin"
	KindAssignmentCanceled = "assignment_canceled"
	KindAssignmentOverdue  = "assignment_overdue"
	KindGoalCreated        = "goal_created"
	KindGoalUpdated        = "goal_updated"
	KindRoleChanged        = "role_changed"
)

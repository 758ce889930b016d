package notifications

import (
	"bytes"
	"fmt"
	"text/template"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(kind, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(kind + "_subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(kind + "_body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[string]messageTemplate{
	KindReviewAssigned: mustTemplate(KindReviewAssigned,
		"New review assignment: {{.templateName}}",
		"You have been asked to review {{.employeeName}} using \"{{.templateName}}\". Due {{.dueDate}}."),
	KindReviewStarted: mustTemplate(KindReviewStarted,
		"Your review has started",
		"{{.reviewerName}} has started your review for {{.periodStart}} to {{.periodEnd}}."),
	KindReviewSubmitted: mustTemplate(KindReviewSubmitted,
		"Review submitted",
		"Review {{.reviewId}} has been submitted."),
	KindReviewCompleted: mustTemplate(KindReviewCompleted,
		"Your review is complete",
		"Your review {{.reviewId}} has been completed. Please read and acknowledge it."),
	KindReviewAcknowledged: mustTemplate(KindReviewAcknowledged,
		"Review acknowledged",
		"{{.employeeName}} acknowledged review {{.reviewId}}."),
	KindReviewCheckIn: mustTemplate(KindReviewCheckIn,
		"New progress check-in",
		"A check-in was recorded on review {{.reviewId}}."),
	KindAssignmentCanceled: mustTemplate(KindAssignmentCanceled,
		"Review assignment canceled",
		"The review assignment {{.assignmentId}} has been canceled."),
	KindAssignmentOverdue: mustTemplate(KindAssignmentOverdue,
		"Review overdue",
		"The review of {{.employeeName}} was due {{.dueDate}} and is still {{.status}}."),
	KindGoalCreated: mustTemplate(KindGoalCreated,
		"New goal: {{.title}}",
		"A goal \"{{.title}}\" has been created for you."),
	KindGoalUpdated: mustTemplate(KindGoalUpdated,
		"Goal updated: {{.title}}",
		"Goal \"{{.title}}\" is now {{.status}} at {{.progress}}%."),
	KindRoleChanged: mustTemplate(KindRoleChanged,
		"Your role has changed",
		"Your role is now {{.role}}."),
}

// Render produces the subject and body for a notification kind.
func Render(kind string, payload map[string]any) (string, string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, payload); err != nil {
		return "", "", err
	}
	if err := tmpl.body.Execute(&body, payload); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

package workflow

import (
	"fmt"
	"math"
	"slices"

	"hrperf/internal/domain/apperr"
)

func validateTemplate(in TemplateInput) error {
	v := apperr.NewValidator()
	v.Required("name", in.Name)
	v.OneOf("frequency", string(in.Frequency), Frequencies...)
	v.OneOf("status", string(in.Status), TemplateStatuses...)
	for i, section := range in.Sections {
		prefix := fmt.Sprintf("sections[%d]", i)
		v.Required(prefix+".title", section.Title)
		v.Range(prefix+".weight", section.Weight, 0, 100)
		for j, q := range section.Questions {
			qp := fmt.Sprintf("%s.questions[%d]", prefix, j)
			v.Required(qp+".text", q.Text)
			v.OneOf(qp+".type", string(q.Type), QuestionTypes...)
			if q.Type == QuestionMultipleChoice && len(q.Options) == 0 {
				v.Add(qp+".options", "is required for multiple-choice questions")
			}
		}
	}
	return v.Err()
}

func validateAssign(in AssignInput) error {
	v := apperr.NewValidator()
	v.Required("templateId", in.TemplateID)
	v.Required("employeeId", in.EmployeeID)
	v.Required("reviewerId", in.ReviewerID)
	v.RequiredTime("dueDate", in.DueDate)
	v.RequiredTime("reviewPeriod.start", in.ReviewPeriod.Start)
	v.RequiredTime("reviewPeriod.end", in.ReviewPeriod.End)
	v.DateOrder("reviewPeriod.start", in.ReviewPeriod.Start, "reviewPeriod.end", in.ReviewPeriod.End)
	return v.Err()
}

func validateCreateReview(in CreateReviewInput) error {
	v := apperr.NewValidator()
	v.Required("employeeId", in.EmployeeID)
	v.Required("reviewType", in.ReviewType)
	v.OneOf("reviewType", in.ReviewType, ReviewTypes...)
	v.RequiredTime("startDate", in.StartDate)
	v.RequiredTime("endDate", in.EndDate)
	v.DateOrder("startDate", in.StartDate, "endDate", in.EndDate)
	return v.Err()
}

func validateRatings(v *apperr.Validator, r Ratings) {
	fields := []struct {
		name  string
		value *int
	}{
		{"ratings.performanceRating", r.Performance},
		{"ratings.communicationRating", r.Communication},
		{"ratings.teamworkRating", r.Teamwork},
		{"ratings.leadershipRating", r.Leadership},
		{"ratings.technicalSkillsRating", r.TechnicalSkills},
		{"ratings.overallRating", r.Overall},
	}
	for _, f := range fields {
		if f.value != nil {
			v.Range(f.name, float64(*f.value), 1, 5)
		}
	}
}

// validateResponses checks each response against the question it answers.
// A nil response clears the answer and is always accepted.
func validateResponses(v *apperr.Validator, sections []ReviewSection, responses []ResponseInput) {
	for i, in := range responses {
		field := fmt.Sprintf("responses[%d]", i)
		if in.Section < 0 || in.Section >= len(sections) {
			v.Add(field+".section", "does not exist")
			continue
		}
		questions := sections[in.Section].Questions
		if in.Question < 0 || in.Question >= len(questions) {
			v.Add(field+".question", "does not exist")
			continue
		}
		if in.Response == nil {
			continue
		}
		if reason := checkResponse(questions[in.Question], in.Response); reason != "" {
			v.Add(field+".response", reason)
		}
	}
}

func checkResponse(q ReviewQuestion, response any) string {
	switch q.Type {
	case QuestionRating:
		n, ok := asNumber(response)
		if !ok || n != math.Trunc(n) || n < 1 || n > 5 {
			return "must be a whole number between 1 and 5"
		}
	case QuestionYesNo:
		if _, ok := response.(bool); !ok {
			return "must be true or false"
		}
	case QuestionMultipleChoice:
		s, ok := response.(string)
		if !ok || !slices.Contains(q.Options, s) {
			return "must be one of the question options"
		}
	default:
		if _, ok := response.(string); !ok {
			return "must be text"
		}
	}
	return ""
}

func mergeRatings(dst *Ratings, src Ratings) {
	if src.Performance != nil {
		dst.Performance = src.Performance
	}
	if src.Communication != nil {
		dst.Communication = src.Communication
	}
	if src.Teamwork != nil {
		dst.Teamwork = src.Teamwork
	}
	if src.Leadership != nil {
		dst.Leadership = src.Leadership
	}
	if src.TechnicalSkills != nil {
		dst.TechnicalSkills = src.TechnicalSkills
	}
	if src.Overall != nil {
		dst.Overall = src.Overall
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

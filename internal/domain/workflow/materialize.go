package workflow

import "slices"

// Materialize copies template sections by value into review sections with
// empty responses. The result shares no memory with the input.
func Materialize(sections []Section) []ReviewSection {
	out := make([]ReviewSection, 0, len(sections))
	for _, section := range sections {
		questions := make([]ReviewQuestion, 0, len(section.Questions))
		for _, q := range section.Questions {
			questions = append(questions, ReviewQuestion{
				Text:     q.Text,
				Type:     q.Type,
				Required: q.Required,
				Options:  slices.Clone(q.Options),
			})
		}
		out = append(out, ReviewSection{
			Title:       section.Title,
			Description: section.Description,
			Weight:      section.Weight,
			Questions:   questions,
		})
	}
	return out
}

func cloneSections(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, section := range sections {
		s := section
		s.Questions = make([]Question, 0, len(section.Questions))
		for _, q := range section.Questions {
			q.Options = slices.Clone(q.Options)
			s.Questions = append(s.Questions, q)
		}
		out = append(out, s)
	}
	return out
}

// reviewTypeFor maps a template frequency to the review type of the reviews it produces.
func reviewTypeFor(f Frequency) string {
	switch f {
	case FrequencySemiAnnual:
		return "Mid-Year"
	case FrequencyQuarterly:
		return "Quarterly"
	case FrequencyMonthly:
		return "Monthly"
	default:
		return "Annual"
	}
}

func ongoingType(reviewType string) bool {
	return reviewType == "Monthly" || reviewType == "Quarterly"
}

package reports

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrperf/internal/domain/workflow"
)

type ReviewDocument struct {
	Review       workflow.ReviewView
	EmployeeName string
	ReviewerName string
	GeneratedAt  time.Time
}

func WriteReviewPDF(w io.Writer, doc ReviewDocument) error {
	r := doc.Review
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.ReviewType+" review", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(r.ReviewType+" performance review"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.Cell(0, 7, tr(fmt.Sprintf("%s: %s", label, value)))
		pdf.Ln(6)
	}
	line("Employee", doc.EmployeeName)
	line("Reviewer", doc.ReviewerName)
	line("Period", r.ReviewPeriod.Start.Format(time.DateOnly)+" to "+r.ReviewPeriod.End.Format(time.DateOnly))
	line("Status", string(r.Status))
	line("Completion", strconv.Itoa(r.CompletionPercentage)+"%")
	if r.AverageRating != nil {
		line("Average rating", strconv.FormatFloat(*r.AverageRating, 'f', 2, 64))
	}
	if r.Ratings.Overall != nil {
		line("Overall rating", strconv.Itoa(*r.Ratings.Overall))
	}
	pdf.Ln(4)

	for _, section := range r.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, tr(section.Title))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, q := range section.Questions {
			pdf.MultiCell(0, 6, tr(q.Text), "", "L", false)
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr(formatResponse(q.Response)), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.Ln(2)
		}
	}

	if fb := r.Feedback; fb.Strengths != "" || fb.AreasForImprovement != "" || fb.Comments != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Feedback")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, item := range [][2]string{{"Strengths", fb.Strengths}, {"Areas for improvement", fb.AreasForImprovement}, {"Comments", fb.Comments}} {
			if item[1] != "" {
				pdf.MultiCell(0, 6, tr(item[0]+": "+item[1]), "", "L", false)
			}
		}
	}

	if ack := r.Acknowledgement; ack != nil && ack.Acknowledged {
		pdf.Ln(4)
		pdf.MultiCell(0, 6, tr("Acknowledged on "+ack.Date.Format(time.DateOnly)+". "+ack.EmployeeComments), "", "L", false)
	}

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 6, "Generated "+doc.GeneratedAt.Format(time.RFC3339))
	return pdf.Output(w)
}

func formatResponse(v any) string {
	switch t := v.(type) {
	case nil:
		return "(no response)"
	case string:
		if t == "" {
			return "(no response)"
		}
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

package reports

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type AssignmentRow struct {
	Employee      string
	Reviewer      string
	Template      string
	Status        string
	DueDate       time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TimeRemaining int
	Overdue       bool
}

const assignmentSheet = "Assignments"

var assignmentHeaders = []string{"Employee", "Reviewer", "Template", "Status", "Due date", "Period start", "Period end", "Days remaining", "Overdue"}

func WriteAssignmentWorkbook(rows []AssignmentRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close workbook failed", "err", err)
		}
	}()
	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, 0, assignmentHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "write workbook header")
	}
	for _, item := range rows {
		row++
		values := []any{
			item.Employee,
			item.Reviewer,
			item.Template,
			item.Status,
			item.DueDate.Format(time.DateOnly),
			item.PeriodStart.Format(time.DateOnly),
			item.PeriodEnd.Format(time.DateOnly),
			item.TimeRemaining,
			yesNo(item.Overdue),
		}
		for col, value := range values {
			if err := writeColumn(f, sheet, col+1, row, value); err != nil {
				return nil, errors.Wrap(err, "write workbook row")
			}
		}
	}
	if err := f.SetSheetName(sheet, assignmentSheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}
	return f.WriteToBuffer()
}

func writeColumn(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string) (int, error) {
	row++
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return row, err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return row, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return row, err
	}
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return row, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return row, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return row, err
	}
	for idx, value := range headers {
		if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
			return row, err
		}
	}
	return row, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

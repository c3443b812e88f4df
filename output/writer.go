package output

import (
	"fmt"
	"strconv"
	"strings"

	"timefill/portal"
)

// Plan is a fill plan together with what is needed to render it for review.
type Plan struct {
	StartDate     string
	AddRowLocator string
	Fill          portal.FillPlan
}

type Writer interface {
	Write(path string, plan Plan) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatFromPath infers the output format from the file extension.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return "excel"
	default:
		return "csv"
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var planHeaders = []string{"Row", "Field", "Action", "Locator", "Value", "Source"}

// PlanHeaders returns the column names used by every plan rendering.
func PlanHeaders() []string {
	return append([]string(nil), planHeaders...)
}

// PlanRows renders the plan in execution order: the add-row clicks first, then
// every control write.
func PlanRows(plan Plan) [][]string {
	rows := make([][]string, 0, plan.Fill.AddRows+len(plan.Fill.Steps)+1)
	rows = append(rows, []string{"", "start_date", "type", "", plan.StartDate, ""})
	for i := 0; i < plan.Fill.AddRows; i++ {
		rows = append(rows, []string{"", "add_row", "click", plan.AddRowLocator, strconv.Itoa(i + 1), ""})
	}
	for _, step := range plan.Fill.Steps {
		action := "type"
		value := step.Value
		if step.Kind == portal.FieldCheckbox {
			action = "ensure_unchecked"
			if step.Desired {
				action = "ensure_checked"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(step.Row),
			step.Field.String(),
			action,
			step.Locator.String(),
			value,
			step.Origin,
		})
	}
	return rows
}

package portal

import (
	"fmt"

	"timefill/browser"
	"timefill/internal/retry"
	"timefill/timesheet"
)

// FillStep is one control write the populator performs.
type FillStep struct {
	Row     int
	Field   timesheet.Field
	Kind    FieldKind
	Locator browser.Locator
	Value   string
	// Desired is the target checkbox state; only meaningful for FieldCheckbox.
	Desired bool
	Origin  string
}

// FillPlan is the complete, ordered set of actions for one timesheet.
type FillPlan struct {
	AddRows int
	Steps   []FillStep
}

// AddRowCount is how many rows must be appended to fit n entries.
func AddRowCount(n, capacity int) int {
	if n <= capacity {
		return 0
	}
	return n - capacity
}

// BuildFillPlan maps entry i onto row i+1. Absent and empty optional columns
// produce no step.
func BuildFillPlan(entries []timesheet.Entry, table FieldLocatorTable, capacity int) (FillPlan, error) {
	if err := table.Validate(); err != nil {
		return FillPlan{}, err
	}
	if capacity <= 0 {
		return FillPlan{}, fmt.Errorf("%w: row capacity must be > 0, got %d", retry.ErrInvalidArgument, capacity)
	}

	plan := FillPlan{AddRows: AddRowCount(len(entries), capacity)}
	for i, entry := range entries {
		if len(entry.Values) < timesheet.RequiredColumns {
			return FillPlan{}, fmt.Errorf("%w: %s has %d column(s), need at least %d",
				retry.ErrInvalidArgument, entry.Origin(), len(entry.Values), timesheet.RequiredColumns)
		}
		row := i + 1
		for _, binding := range table {
			if !entry.Supplied(binding.Field) {
				continue
			}
			value, _ := entry.Value(binding.Field)
			step := FillStep{
				Row:     row,
				Field:   binding.Field,
				Kind:    binding.Kind,
				Locator: binding.Locate(row),
				Value:   value,
				Origin:  entry.Origin(),
			}
			if binding.Kind == FieldCheckbox {
				step.Desired = value == timesheet.OnSiteMarker
			}
			plan.Steps = append(plan.Steps, step)
		}
	}
	return plan, nil
}

package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"timefill/internal/timeutil"
	"timefill/timesheet"
)

// toEntry validates a record and converts it, moving its date by shiftDays.
func toEntry(path string, record Record, shiftDays int) (timesheet.Entry, decimal.Decimal, error) {
	where := fmt.Sprintf("%s:%d", path, record.Line)
	values := append([]string(nil), record.Values...)

	switch {
	case len(values) < timesheet.RequiredColumns:
		return timesheet.Entry{}, decimal.Zero, fmt.Errorf(
			"%s: expected at least %d columns (date, unit of study, paycode, units, start time), got %d",
			where, timesheet.RequiredColumns, len(values))
	case len(values) > timesheet.MaxColumns:
		return timesheet.Entry{}, decimal.Zero, fmt.Errorf(
			"%s: expected at most %d columns, got %d", where, timesheet.MaxColumns, len(values))
	}

	date := values[timesheet.FieldDate]
	if _, err := timeutil.ParseDay(date); err != nil {
		return timesheet.Entry{}, decimal.Zero, fmt.Errorf("%s: %w", where, err)
	}
	if shiftDays != 0 {
		shifted, err := timeutil.ShiftDay(date, shiftDays)
		if err != nil {
			return timesheet.Entry{}, decimal.Zero, fmt.Errorf("%s: %w", where, err)
		}
		values[timesheet.FieldDate] = shifted
	}

	for _, field := range []timesheet.Field{timesheet.FieldUnitOfStudy, timesheet.FieldPaycode, timesheet.FieldStartTime} {
		if values[field] == "" {
			return timesheet.Entry{}, decimal.Zero, fmt.Errorf("%s: %s is required", where, field)
		}
	}

	units, err := decimal.NewFromString(values[timesheet.FieldUnits])
	if err != nil {
		return timesheet.Entry{}, decimal.Zero, fmt.Errorf("%s: units %q is not a number", where, values[timesheet.FieldUnits])
	}
	if units.IsNegative() {
		return timesheet.Entry{}, decimal.Zero, fmt.Errorf("%s: units must not be negative, got %s", where, units)
	}

	return timesheet.NewEntry(values, path, record.Line), units, nil
}

package timesheet

import (
	"errors"
	"fmt"
	"time"

	"timefill/internal/timeutil"
)

// StartDate returns the earliest entry date, compared as (year, month, day),
// formatted as the entry supplied it.
func StartDate(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", errors.New("no entries to derive a start date from")
	}

	var (
		earliest     time.Time
		earliestText string
	)
	for i, entry := range entries {
		day, err := entry.Day()
		if err != nil {
			return "", fmt.Errorf("%s: %w", entry.Origin(), err)
		}
		if i == 0 || timeutil.DayBefore(day, earliest) {
			earliest = day
			earliestText = entry.Date()
		}
	}
	return earliestText, nil
}

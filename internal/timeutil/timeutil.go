package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the portal's day/month/year date format.
const DayLayout = "02/01/2006"

// ParseDay parses a DD/MM/YYYY day. Single-digit day and month parts are
// accepted.
func ParseDay(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{DayLayout, "2/1/2006"} {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid day %q (expected DD/MM/YYYY)", value)
}

func FormatDay(value time.Time) string {
	return value.Format(DayLayout)
}

// ShiftDay moves a DD/MM/YYYY day by the given number of days.
func ShiftDay(value string, days int) (string, error) {
	day, err := ParseDay(value)
	if err != nil {
		return "", err
	}
	return FormatDay(day.AddDate(0, 0, days)), nil
}

// DayBefore orders two days by (year, month, day).
func DayBefore(a, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() < b.Year()
	}
	if a.Month() != b.Month() {
		return a.Month() < b.Month()
	}
	return a.Day() < b.Day()
}

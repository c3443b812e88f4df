package importer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"timefill/timesheet"
)

const (
	ModeRaw  = "raw"
	ModeAuto = "auto"

	// RotationDays is how far "auto" mode moves every date: the next
	// fortnightly timesheet.
	RotationDays = 14

	requiredColumns = timesheet.RequiredColumns
)

var ErrNoEntries = errors.New("no timesheet entries found")

type Options struct {
	// Mode is raw (dates as written) or auto (dates moved forward by
	// ShiftDays, default RotationDays).
	Mode      string
	Format    string
	ShiftDays int
}

type Result struct {
	FilesProcessed int
	RowsRead       int
	Entries        []timesheet.Entry
	StartDate      string
	TotalUnits     decimal.Decimal
}

// ValidateMode normalizes mode and rejects unknown values.
func ValidateMode(mode string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case "":
		return ModeRaw, nil
	case ModeRaw, ModeAuto:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported mode %q (supported: %s, %s)", mode, ModeRaw, ModeAuto)
	}
}

// Run reads every path in order and returns the concatenated, validated
// entries together with the derived start date.
func Run(paths []string, options Options) (*Result, error) {
	mode, err := ValidateMode(options.Mode)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one input file is required")
	}
	shiftDays := 0
	if mode == ModeAuto {
		shiftDays = options.ShiftDays
		if shiftDays == 0 {
			shiftDays = RotationDays
		}
	}

	result := &Result{
		Entries:    make([]timesheet.Entry, 0, 32),
		TotalUnits: decimal.Zero,
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("cannot find file %s: %w", path, err)
		}
		sourceFormat, err := inferFormat(path, options.Format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			entry, units, err := toEntry(path, record, shiftDays)
			if err != nil {
				return nil, err
			}
			result.TotalUnits = result.TotalUnits.Add(units)
			result.Entries = append(result.Entries, entry)
		}
	}

	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoEntries, strings.Join(paths, ", "))
	}
	result.StartDate, err = timesheet.StartDate(result.Entries)
	if err != nil {
		return nil, err
	}
	return result, nil
}

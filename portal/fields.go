package portal

import (
	"fmt"
	"strings"

	"timefill/browser"
	"timefill/internal/retry"
	"timefill/timesheet"
)

// FieldKind selects how a value reaches its control.
type FieldKind int

const (
	// FieldText controls receive the value as keystrokes.
	FieldText FieldKind = iota
	// FieldCheckbox controls are clicked only when their state differs.
	FieldCheckbox
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldCheckbox:
		return "checkbox"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// LocatorTemplate yields the control locator for a 1-based row index.
type LocatorTemplate func(row int) browser.Locator

type FieldBinding struct {
	Field  timesheet.Field
	Kind   FieldKind
	Locate LocatorTemplate
}

// FieldLocatorTable binds entry columns to per-row controls. Bindings are
// filled in table order.
type FieldLocatorTable []FieldBinding

const (
	entryRows = "#TSEntry"
	formRows  = "body > form > table > tbody"
)

// cell addresses the control with id inside column of a timesheet row.
func cell(rows string, column int, id string) LocatorTemplate {
	return func(row int) browser.Locator {
		return browser.Locator(fmt.Sprintf("%s > tr:nth-of-type(%d) > td:nth-of-type(%d) > #%s", rows, row, column, id))
	}
}

func DefaultFieldTable() FieldLocatorTable {
	return FieldLocatorTable{
		{Field: timesheet.FieldDate, Kind: FieldText, Locate: cell(entryRows, 4, "P_WORK_DATE")},
		{Field: timesheet.FieldUnitOfStudy, Kind: FieldText, Locate: cell(formRows, 6, "P_UNIT_OF_STUDY")},
		{Field: timesheet.FieldPaycode, Kind: FieldText, Locate: cell(formRows, 7, "P_PAYCODE")},
		{Field: timesheet.FieldUnits, Kind: FieldText, Locate: cell(formRows, 8, "P_UNITS")},
		{Field: timesheet.FieldStartTime, Kind: FieldText, Locate: cell(formRows, 11, "P_START_TIME")},
		{Field: timesheet.FieldRequiredOnSite, Kind: FieldCheckbox, Locate: cell(formRows, 10, "P_REQ_LOC_TICK")},
		{Field: timesheet.FieldResponsibilityCode, Kind: FieldText, Locate: cell(formRows, 12, "P_GL_OVERRIDE")},
		{Field: timesheet.FieldProjectCode, Kind: FieldText, Locate: cell(formRows, 13, "P_GL_ACCOUNT")},
		{Field: timesheet.FieldAnalysisCode, Kind: FieldText, Locate: cell(formRows, 14, "P_GL_SUB_ACCOUNT")},
		{Field: timesheet.FieldTopic, Kind: FieldText, Locate: cell(formRows, 15, "P_TOPIC")},
		{Field: timesheet.FieldTopicDetail, Kind: FieldText, Locate: cell(formRows, 16, "P_TOPIC_DETAILS")},
	}
}

func (t FieldLocatorTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: field locator table is empty", retry.ErrInvalidArgument)
	}
	seen := make(map[timesheet.Field]bool, len(t))
	for _, binding := range t {
		if binding.Field < 0 || int(binding.Field) >= timesheet.MaxColumns {
			return fmt.Errorf("%w: field %s is out of range", retry.ErrInvalidArgument, binding.Field)
		}
		if seen[binding.Field] {
			return fmt.Errorf("%w: field %s is bound twice", retry.ErrInvalidArgument, binding.Field)
		}
		seen[binding.Field] = true
		if binding.Locate == nil {
			return fmt.Errorf("%w: field %s has no locator template", retry.ErrInvalidArgument, binding.Field)
		}
		if strings.TrimSpace(binding.Locate(1).String()) == "" {
			return fmt.Errorf("%w: field %s yields an empty locator", retry.ErrInvalidArgument, binding.Field)
		}
		if binding.Kind != FieldText && binding.Kind != FieldCheckbox {
			return fmt.Errorf("%w: field %s has unknown kind %s", retry.ErrInvalidArgument, binding.Field, binding.Kind)
		}
	}
	for field := timesheet.FieldDate; int(field) < timesheet.RequiredColumns; field++ {
		if !seen[field] {
			return fmt.Errorf("%w: required field %s is not bound", retry.ErrInvalidArgument, field)
		}
	}
	return nil
}

func (t FieldLocatorTable) Lookup(field timesheet.Field) (FieldBinding, bool) {
	for _, binding := range t {
		if binding.Field == field {
			return binding, true
		}
	}
	return FieldBinding{}, false
}

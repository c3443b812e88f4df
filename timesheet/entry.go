package timesheet

import (
	"fmt"
	"strings"
	"time"

	"timefill/internal/timeutil"
)

// Field is the fixed, positional column index of an entry value.
type Field int

const (
	FieldDate Field = iota
	FieldUnitOfStudy
	FieldPaycode
	FieldUnits
	FieldStartTime
	FieldRequiredOnSite
	FieldResponsibilityCode
	FieldProjectCode
	FieldAnalysisCode
	FieldTopic
	FieldTopicDetail
)

const (
	// RequiredColumns is the number of leading columns every entry carries.
	RequiredColumns = 5
	// MaxColumns is the number of columns the portal row accepts.
	MaxColumns = int(FieldTopicDetail) + 1

	// OnSiteMarker is the only value that ticks the required-on-site box.
	OnSiteMarker = "T"
)

var fieldNames = [...]string{
	FieldDate:               "date",
	FieldUnitOfStudy:        "unit_of_study",
	FieldPaycode:            "paycode",
	FieldUnits:              "units",
	FieldStartTime:          "start_time",
	FieldRequiredOnSite:     "required_on_site",
	FieldResponsibilityCode: "responsibility_code",
	FieldProjectCode:        "project_code",
	FieldAnalysisCode:       "analysis_code",
	FieldTopic:              "topic",
	FieldTopicDetail:        "topic_detail",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Optional reports whether the column may be omitted or left empty.
func (f Field) Optional() bool {
	return int(f) >= RequiredColumns
}

// Fields lists every column in positional order.
func Fields() []Field {
	out := make([]Field, 0, MaxColumns)
	for f := FieldDate; int(f) < MaxColumns; f++ {
		out = append(out, f)
	}
	return out
}

// Entry is one timesheet row as supplied by the source file. Columns beyond
// len(Values) are absent.
type Entry struct {
	Values     []string
	SourceFile string
	Line       int
}

// NewEntry copies values so the entry stays immutable to callers.
func NewEntry(values []string, sourceFile string, line int) Entry {
	return Entry{
		Values:     append([]string(nil), values...),
		SourceFile: sourceFile,
		Line:       line,
	}
}

// Value returns the column value and whether the column is present at all.
func (e Entry) Value(field Field) (string, bool) {
	if field < 0 || int(field) >= len(e.Values) {
		return "", false
	}
	return e.Values[field], true
}

// Supplied reports whether the field carries a value that must be written.
// Required columns only need to be present; optional text columns must also be
// non-empty. The checkbox column counts as supplied whenever present because an
// empty marker still means "not on site".
func (e Entry) Supplied(field Field) bool {
	value, ok := e.Value(field)
	if !ok {
		return false
	}
	if !field.Optional() || field == FieldRequiredOnSite {
		return true
	}
	return strings.TrimSpace(value) != ""
}

// RequiredOnSite is the desired checkbox state.
func (e Entry) RequiredOnSite() bool {
	value, _ := e.Value(FieldRequiredOnSite)
	return value == OnSiteMarker
}

func (e Entry) Date() string {
	value, _ := e.Value(FieldDate)
	return strings.TrimSpace(value)
}

func (e Entry) Day() (time.Time, error) {
	return timeutil.ParseDay(e.Date())
}

// Origin is a human-readable pointer to where the entry came from.
func (e Entry) Origin() string {
	if e.SourceFile == "" {
		return fmt.Sprintf("line %d", e.Line)
	}
	return fmt.Sprintf("%s:%d", e.SourceFile, e.Line)
}

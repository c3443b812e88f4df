package importer

import "strings"

// Record is one non-blank source row with positional values.
type Record struct {
	Line   int
	Values []string
}

// newRecord trims every cell and reports false for rows with no content.
func newRecord(line int, row []string) (Record, bool) {
	values := make([]string, len(row))
	blank := true
	for i, value := range row {
		values[i] = strings.TrimSpace(value)
		if values[i] != "" {
			blank = false
		}
	}
	if blank {
		return Record{}, false
	}
	return Record{Line: line, Values: values}, true
}

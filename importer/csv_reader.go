package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader reads headerless timesheet files: one entry per line, columns in
// fixed positions, blank lines ignored. A UTF-8 or UTF-16 byte order mark,
// as written by spreadsheet exports, is honoured.
type CSVReader struct{}

func (r *CSVReader) Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(file, decoder))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records := make([]Record, 0, 32)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}

		line, _ := reader.FieldPos(0)
		if record, ok := newRecord(line, row); ok {
			records = append(records, record)
		}
	}

	return records, nil
}

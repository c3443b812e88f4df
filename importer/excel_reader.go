package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads the first sheet of a workbook laid out like the CSV
// format: no header row, one entry per row.
type ExcelReader struct{}

func (r *ExcelReader) Read(path string) ([]Record, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if record, ok := newRecord(i+1, row); ok {
			records = append(records, record)
		}
	}

	return records, nil
}

package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"timefill/internal/timeutil"
)

// ShiftCSV copies a timesheet file to outPath with the date column of every
// row moved by days. Blank lines are copied through unchanged. It returns the
// number of shifted rows.
func ShiftCSV(inPath, outPath string, days int) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open csv file %s: %w", inPath, err)
	}
	defer in.Close()

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	scanner := bufio.NewScanner(transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	shifted := 0
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			writer.Flush()
			buffer.WriteString("\n")
			continue
		}

		reader := csv.NewReader(strings.NewReader(text))
		reader.LazyQuotes = true
		row, err := reader.Read()
		if err != nil {
			return 0, fmt.Errorf("%s:%d: %w", inPath, line, err)
		}
		row[0], err = timeutil.ShiftDay(strings.TrimSpace(row[0]), days)
		if err != nil {
			return 0, fmt.Errorf("%s:%d: %w", inPath, line, err)
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
		shifted++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read csv file %s: %w", inPath, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv output: %w", err)
	}

	if err := os.WriteFile(outPath, buffer.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write csv output %s: %w", outPath, err)
	}
	return shifted, nil
}

package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Reader interface {
	Read(path string) ([]Record, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// inferFormat prefers an explicit format and falls back to the file extension.
func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv", "txt":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a .xlsx or .csv file into a Table. The first sheet of a workbook is used.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xlsm":
		return loadExcel(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q: only .xlsx and .csv are allowed", filepath.Ext(path))
	}
}

func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in Excel file %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewTable(filepath.Base(path), nil, nil), nil
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	restoreLongNumbers(rows, raw)
	return NewTable(filepath.Base(path), rows[0], rows[1:]), nil
}

// restoreLongNumbers replaces the scientific notation a General format gives integers of
// 12 or more digits (accounts, phone numbers) with the stored digits. Other formatted
// cells such as dates keep their display value.
func restoreLongNumbers(rows, raw [][]string) {
	for i, row := range rows {
		if i >= len(raw) {
			return
		}
		for j, cell := range row {
			if j < len(raw[i]) && strings.ContainsAny(cell, "Ee") && isDigits(raw[i][j]) {
				row[j] = raw[i][j]
			}
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func loadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return NewTable(filepath.Base(path), nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}

	return NewTable(filepath.Base(path), headers, rows), nil
}

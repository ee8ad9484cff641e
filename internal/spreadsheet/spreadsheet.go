// Package spreadsheet generates the sample xlsx reports attached to
// pipeline drafts and renders uploaded spreadsheets as tabular previews.
package spreadsheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// BuildReport produces an xlsx workbook with Metric/Value/Status
// columns, one row per metric named "<name>_<i>".
func BuildReport(name string, rows int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Metric", "Value", "Status"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", h, err)
		}
	}

	for i := 0; i < rows; i++ {
		status := "Active"
		if i%2 != 0 {
			status = "Review"
		}
		values := []any{fmt.Sprintf("%s_%d", name, i), float64(i) * 12.5, status}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview reads a spreadsheet and returns its first sheet as rows of
// strings, truncated to limit rows (0 means no limit).
func Preview(content []byte, limit int) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("cannot preview file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet: %w", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Previewable reports whether the filename looks like a spreadsheet
// the preview reader understands.
func Previewable(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

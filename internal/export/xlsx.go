package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetName is the fixed data sheet of exported workbooks.
const sheetName = "API_Data"

// XLSXExporter serializes a table as a spreadsheet workbook with a single
// data sheet.
type XLSXExporter struct{}

// Export writes the table to w as an xlsx workbook
func (e *XLSXExporter) Export(t *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = cellValue(row[i])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell coordinates: %w", err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue maps row values onto types excelize can write directly.
func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	default:
		return val
	}
}

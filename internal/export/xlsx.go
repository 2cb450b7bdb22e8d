// Package export writes the flattened result table to report files. The
// column set is fixed by result.Columns; exporters add no derived data.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/darionhq/resultgrab/internal/result"
)

// SheetName is the single sheet carrying the flattened table.
const SheetName = "Results"

// WriteXLSX writes the flattened rows as a spreadsheet with a header row.
func WriteXLSX(path string, rows []result.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range result.Columns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for r, row := range rows {
		for c, v := range row.Values() {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

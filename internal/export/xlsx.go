package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/susdigest/internal/report"
)

const sheetName = "Comparison"

// WriteXLSX writes the comparison table as a single-sheet workbook. Numbers
// are numeric cells and nulls are left blank.
func WriteXLSX(w io.Writer, records []report.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}
	}
	index, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	cols := report.Columns()
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, c); err != nil {
			return err
		}
	}
	for r, rec := range records {
		for i, c := range cols {
			v := rec.Value(c)
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

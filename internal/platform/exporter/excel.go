package exporter

import (
	"bytes"
	"fmt"

	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/xuri/excelize/v2"
)

// ExcelExporter renders report rows to an xlsx byte stream.
type ExcelExporter struct{}

// NewExcelExporter creates the xlsx exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

var _ portssvc.Exporter = (*ExcelExporter)(nil)

// Render writes the header row followed by the data rows into a single sheet.
// An empty row set still produces a well-formed workbook with headers only.
func (e *ExcelExporter) Render(sheetName string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than adding a second one.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheetName, err)
	}

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := setRow(f, sheetName, 1, headerCells); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, sheetName, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func setRow(f *excelize.File, sheetName string, rowNumber int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNumber, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNumber, err)
	}
	return nil
}

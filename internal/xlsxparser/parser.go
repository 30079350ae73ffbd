// =============================================================================
// Payroll to pain.001 Converter - XLSX Payroll Sheet Parser
// =============================================================================
//
// This module reads payroll rows from an uploaded XLSX workbook and writes the
// sample template offered to users.
//
// SHEET STRUCTURE (Expected Columns):
//   Only the first sheet is read. Its first row holds the column headers;
//   every following non-empty row becomes one record keyed by header.
//   Headers are matched case-insensitively, column order does not matter and
//   unknown columns are carried along untouched.
//
//   | prenom | nom    | rib              | bic      | currency | salaire |
//   |--------|--------|------------------|----------|----------|---------|
//   | Jean   | Dupont | 013780100000123  |          | MAD      | 1500.50 |
//   | Amina  | Alaoui | 230 780100000456 | CIHMMAMC |          | 1500    |
//
// CELL VALUES:
//   Cells are read raw (no number format applied) so that amounts keep
//   their full precision. An account number typed as a number loses its
//   leading zeros inside Excel itself; it must be entered as text.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// SampleHeaders is the header row of the downloadable template.
var SampleHeaders = []string{
	types.FieldFirstName,
	types.FieldLastName,
	types.FieldRIB,
	types.FieldBIC,
	types.FieldCurrency,
	types.FieldSalary,
}

// sampleRows are the example rows written below the header.
var sampleRows = [][]any{
	{"Jean", "Dupont", "013780100000123", "", "MAD", 1500.50},
	{"Amina", "Alaoui", "230780100000456", "CIHMMAMC", "MAD", 1500},
}

// =============================================================================
// READING
// =============================================================================

// ReadRecords reads every data row of the first sheet of an XLSX workbook.
//
// PARAMETERS:
//   - r: The workbook content.
//
// RETURNS:
//   - One RawRecord per non-empty data row, in sheet order.
//   - An error if the workbook cannot be opened or has no sheet.
func ReadRecords(r io.Reader) ([]types.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheetName, err)
	}

	return types.RecordsFromRows(rows), nil
}

// =============================================================================
// SAMPLE TEMPLATE
// =============================================================================

// WriteSample writes the sample payroll workbook: a bold header row and two
// example rows.
func WriteSample(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	header := make([]any, len(SampleHeaders))
	for i, h := range SampleHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastColumn, err := excelize.ColumnNumberToName(len(SampleHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastColumn+"1", bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, row := range sampleRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write sample row %d: %w", i+1, err)
		}
	}

	// Wide enough for a full RIB.
	if err := f.SetColWidth(sheetName, "C", "C", 22); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

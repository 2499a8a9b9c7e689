// =============================================================================
// Vehicle Listing Importer - XLSX Parser
// =============================================================================
//
// This module reads dealer stock workbooks into a types.Table. Unlike CSV,
// workbook cells carry a type, and it is preserved:
//
//   | Cell type                | Row value           |
//   |--------------------------|---------------------|
//   | number (or untyped)      | float64             |
//   | boolean                  | bool                |
//   | shared / inline string   | string              |
//   | formula result, date     | string (raw value)  |
//
// Dates stay as their serial number, which the year and mileage
// normalizers read like any other number.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one worksheet of a workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - settings: Sheet name (empty for the first sheet) and header row.
//
// RETURNS:
//   - The parsed table, with Sheet set to the sheet actually read.
//   - An error if the workbook cannot be opened, the sheet does not exist,
//     or the sheet has no header row.
func Parse(path string, settings config.XLSXSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, settings.Sheet)
	if err != nil {
		return nil, err
	}

	table, err := parseSheet(f, sheet, settings.HeaderRow)
	if err != nil {
		return nil, err
	}
	table.SourceFile = path

	return table, nil
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// resolveSheet picks the requested sheet or the first one.
func resolveSheet(f *excelize.File, requested string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", types.ErrEmptyTable
	}
	if requested == "" {
		return sheets[0], nil
	}

	for _, name := range sheets {
		if strings.EqualFold(name, requested) {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (available: %s)", requested, strings.Join(sheets, ", "))
}

// parseSheet reads headers from headerRow (1-indexed) and data from the
// rows below it.
func parseSheet(f *excelize.File, sheet string, headerRow int) (*types.Table, error) {
	if headerRow <= 0 {
		headerRow = 1
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < headerRow {
		return nil, types.ErrEmptyTable
	}

	headers := types.CleanHeaders(rows[headerRow-1])
	table := &types.Table{
		Headers: headers,
		Rows:    make([]types.Row, 0, len(rows)-headerRow),
		Sheet:   sheet,
	}

	for i := headerRow; i < len(rows); i++ {
		row, err := convertRow(f, sheet, i+1, rows[i], headers)
		if err != nil {
			return nil, err
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

// convertRow builds a typed row. rowNum is 1-indexed.
func convertRow(f *excelize.File, sheet string, rowNum int, cells []string, headers []string) (types.Row, error) {
	row := make(types.Row, len(headers))

	for col, raw := range cells {
		if col >= len(headers) || strings.TrimSpace(raw) == "" {
			continue
		}

		axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return nil, fmt.Errorf("failed to address cell in row %d: %w", rowNum, err)
		}
		cellType, err := f.GetCellType(sheet, axis)
		if err != nil {
			return nil, fmt.Errorf("failed to read cell %s: %w", axis, err)
		}

		row[headers[col]] = typedValue(cellType, raw)
	}

	return row, nil
}

// typedValue converts a raw cell value according to its cell type.
func typedValue(cellType excelize.CellType, raw string) any {
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
		return raw
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	default:
		return strings.TrimSpace(raw)
	}
}

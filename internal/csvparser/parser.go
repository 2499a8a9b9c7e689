// =============================================================================
// Vehicle Listing Importer - CSV Parser Module
// =============================================================================
//
// This module parses dealer CSV exports into a types.Table. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers, merged column by column
//   - Metadata rows between the header and the data
//   - Blank and duplicate header names
//
// Every value is kept as a string. Empty cells are left out of the row so a
// CSV row looks the same to the transformer as a workbook row.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// utf8BOM is stripped from the first header cell. Spreadsheet programs add
// it when saving "CSV UTF-8".
const utf8BOM = "\ufeff"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the main configuration.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath

	return table, nil
}

// ParseReader parses CSV data from r.
//
// PARSING PROCESS:
//  1. Configure the CSV reader with the delimiter from settings
//  2. Read and merge the header rows
//  3. Skip to the data start row
//  4. Convert each non-blank row to a types.Row
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	csvReader := csv.NewReader(r)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(allRows) < headerRows {
		return nil, types.ErrEmptyTable
	}

	headers := extractHeaders(allRows[:headerRows])

	startIndex := settings.DataStartRow - 1
	if startIndex < headerRows {
		startIndex = headerRows
	}

	return &types.Table{
		Headers: headers,
		Rows:    extractDataRows(allRows, headers, startIndex),
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := settings.Comma()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Dealer exports are often ragged and loosely quoted.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	return nil
}

// extractHeaders merges header rows into one set of names.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Vehicle", "",      "Price", ""
//	Row 2: "Make",    "Model", "AED",   "Date"
//	Result: "Vehicle Make", "Model", "Price AED", "Date"
func extractHeaders(rows [][]string) []string {
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	if len(rows) == 1 {
		return types.CleanHeaders(rows[0])
	}

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	merged := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range rows {
			if col < len(row) {
				if value := strings.TrimSpace(row[col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		merged[col] = strings.Join(parts, " ")
	}

	return types.CleanHeaders(merged)
}

// extractDataRows converts rows from startIndex on into types.Row values.
// Cells past the header width are dropped.
func extractDataRows(allRows [][]string, headers []string, startIndex int) []types.Row {
	rows := make([]types.Row, 0, max(len(allRows)-startIndex, 0))

	for i := startIndex; i < len(allRows); i++ {
		record := allRows[i]
		if isRowEmpty(record) {
			continue
		}

		row := make(types.Row, len(headers))
		for col, header := range headers {
			if col >= len(record) {
				break
			}
			if value := strings.TrimSpace(record[col]); value != "" {
				row[header] = value
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

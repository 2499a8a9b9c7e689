// =============================================================================
// Vehicle Listing Importer - Shared Types
// =============================================================================
//
// This package contains the raw tabular types produced by the file parsers
// and consumed by the detection and transformation packages. Keeping them
// here avoids import cycles between:
//   - csvparser / xlsxparser
//   - smartsplit
//   - vehicle
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyTable is returned by the parsers when a file has no header row.
var ErrEmptyTable = errors.New("table has no header row")

// =============================================================================
// TABLE TYPES
// =============================================================================

// Row is one raw spreadsheet row keyed by column header. Values are scalars
// of whatever type the parser produced: string, float64, int, bool or nil.
type Row map[string]any

// Table is a parsed input file.
type Table struct {
	// Headers are the column names in file order.
	Headers []string

	// Rows are the data rows, in file order, with empty rows removed.
	Rows []Row

	// SourceFile is the path the table was read from.
	SourceFile string

	// Sheet is the worksheet name for workbook input, empty for CSV.
	Sheet string
}

// =============================================================================
// VALUE HELPERS
// =============================================================================

// Stringify renders a raw cell value as text. nil becomes "". Whole floats
// print without a decimal point so 2022 from a numeric cell reads "2022".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IsEmpty reports whether a raw value counts as empty: nil, "" or a value
// whose text form is empty.
func IsEmpty(v any) bool {
	return Stringify(v) == ""
}

// =============================================================================
// HEADER HELPERS
// =============================================================================

// CleanHeaders trims header names, names blank columns "Column_N" and makes
// duplicates unique by appending "_1", "_2", ... to later occurrences.
func CleanHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}

		if seen[h] > 0 {
			base := h
			for n := 1; ; n++ {
				h = fmt.Sprintf("%s_%d", base, n)
				if seen[h] == 0 {
					break
				}
			}
		}
		seen[h]++

		headers[i] = h
	}

	return headers
}

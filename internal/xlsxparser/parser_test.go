package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// writeWorkbook saves a workbook whose first sheet is "Stock" plus an
// "Notes" sheet, and returns its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Stock"))
	for r, row := range rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Stock", axis, value))
		}
	}

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "Memo"))

	path := filepath.Join(t.TempDir(), "stock.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_TypedCells(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Vehicle", "Year", "Mileage", "Certified", "", "Vehicle"},
		{"Audi A6 quattro", 2020, 45000.5, true, "x", "dup"},
		{nil, nil, nil, nil, nil, nil},
		{"Kia Rio", "2019", nil, false},
	})

	table, err := Parse(path, config.XLSXSettings{HeaderRow: 1})
	require.NoError(t, err)

	assert.Equal(t, "Stock", table.Sheet)
	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, []string{"Vehicle", "Year", "Mileage", "Certified", "Column_5", "Vehicle_1"}, table.Headers)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, types.Row{
		"Vehicle":   "Audi A6 quattro",
		"Year":      2020.0,
		"Mileage":   45000.5,
		"Certified": true,
		"Column_5":  "x",
		"Vehicle_1": "dup",
	}, table.Rows[0])

	// A year typed as text stays text.
	assert.Equal(t, types.Row{"Vehicle": "Kia Rio", "Year": "2019", "Certified": false}, table.Rows[1])
}

func TestParse_NamedSheetAndHeaderRow(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Dealer stock export"},
		{"Make", "Model"},
		{"Toyota", "Camry"},
	})

	table, err := Parse(path, config.XLSXSettings{Sheet: "stock", HeaderRow: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Make", "Model"}, table.Headers)
	assert.Equal(t, []types.Row{{"Make": "Toyota", "Model": "Camry"}}, table.Rows)
}

func TestParse_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Make"}})

	_, err := Parse(path, config.XLSXSettings{Sheet: "Inventory"})
	assert.ErrorContains(t, err, `sheet "Inventory" not found`)
}

func TestParse_HeaderRowPastEnd(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Make"}})

	_, err := Parse(path, config.XLSXSettings{HeaderRow: 5})
	assert.ErrorIs(t, err, types.ErrEmptyTable)
}

func TestSheetNames(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Make"}})

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stock", "Notes"}, names)
}

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
)

// Sheet names of the XLSX export.
const (
	ListingsSheet = "Listings"
	SummarySheet  = "Summary"
)

// listingIDHeader heads the first column of the Listings sheet.
const listingIDHeader = "Listing ID"

// WriteXLSX writes a workbook with one row per vehicle on the Listings
// sheet, listing-level columns repeated, and the run stats on a Summary
// sheet. Numeric values stay numeric.
func WriteXLSX(w io.Writer, doc *Document, registry *schema.Registry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ListingsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	groupingKeys, listingKeys, vehicleKeys := orderedKeys(registry)

	header := []any{listingIDHeader}
	for _, keys := range [][]schema.FieldKey{groupingKeys, listingKeys, vehicleKeys} {
		for _, key := range keys {
			header = append(header, columnLabel(registry, key))
		}
	}
	if err := f.SetSheetRow(ListingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("failed to address header: %w", err)
	}
	if err := f.SetCellStyle(ListingsSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(ListingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	rowNum := 2
	for i := range doc.Listings {
		l := &doc.Listings[i]
		for _, detail := range l.Vehicles {
			row := []any{l.ID}
			for _, key := range groupingKeys {
				row = append(row, cellValue(l.Grouping.Get(key)))
			}
			for _, key := range listingKeys {
				row = append(row, cellValue(l.Fields.Get(key)))
			}
			for _, key := range vehicleKeys {
				row = append(row, cellValue(detail.Get(key)))
			}

			axis, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("failed to address row %d: %w", rowNum, err)
			}
			if err := f.SetSheetRow(ListingsSheet, axis, &row); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	if err := writeSummarySheet(f, doc, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, doc *Document, bold int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	rows := [][]any{
		{"Import ID", doc.ImportID},
		{"Source", doc.Source},
		{"Generated At", doc.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Listings", doc.Stats.TotalListings},
		{"Total Vehicles", doc.Stats.TotalVehicles},
		{"Avg Vehicles per Listing", doc.Stats.AvgVehiclesPerListing},
		{"Unique Makes", doc.Stats.UniqueMakes},
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address summary row: %w", err)
		}
		if err := f.SetSheetRow(SummarySheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	return nil
}

func columnLabel(registry *schema.Registry, key schema.FieldKey) string {
	if f, ok := registry.Field(key); ok && f.Label != "" {
		return f.Label
	}
	return string(key)
}

// cellValue keeps numbers numeric and leaves empty values as blank cells.
func cellValue(v vehicle.Value) any {
	if n, ok := v.Float(); ok {
		return n
	}
	if v.IsEmpty() {
		return nil
	}
	return v.String()
}

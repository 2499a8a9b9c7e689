package smartsplit

import (
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// combinedThreshold is the share of non-empty samples that must contain a
// known make before a column is treated as combined make/model text.
const combinedThreshold = 0.3

// DefaultSampleSize is the number of leading rows inspected per column.
const DefaultSampleSize = 10

// Detection is the result of scoring a column's sample values.
type Detection struct {
	IsCombined    bool
	Confidence    float64
	DetectedMakes []string
}

// DetectCombined scores whether sample values look like combined make and
// model text. Confidence is the share of non-empty samples that contain a
// known make as a whole word; DetectedMakes lists each distinct make in the
// order it was first seen.
func DetectCombined(samples []string) Detection {
	var (
		matched  int
		nonEmpty int
		seen     = make(map[string]bool)
		makes    = []string{}
	)

	for _, sample := range samples {
		if sample == "" {
			continue
		}
		nonEmpty++

		value := strings.TrimSpace(sample)
		for _, p := range detectPatterns {
			if !p.anywhere.MatchString(value) {
				continue
			}
			if !seen[p.name] {
				seen[p.name] = true
				makes = append(makes, p.name)
			}
			matched++
			break
		}
	}

	if nonEmpty == 0 {
		return Detection{DetectedMakes: makes}
	}

	confidence := float64(matched) / float64(nonEmpty)
	return Detection{
		IsCombined:    confidence > combinedThreshold,
		Confidence:    confidence,
		DetectedMakes: makes,
	}
}

// =============================================================================
// COLUMN ANALYSIS
// =============================================================================

// ColumnAnalysis is the detection result for one column of a table.
type ColumnAnalysis struct {
	Column string
	Detection
	// Samples holds up to three sample values for preview.
	Samples []string
}

// SampleValues returns the text of the column in the first n rows, skipping
// rows where the column is missing or nil.
func SampleValues(rows []types.Row, column string, n int) []string {
	if n > len(rows) {
		n = len(rows)
	}
	samples := make([]string, 0, n)
	for _, row := range rows[:n] {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		samples = append(samples, types.Stringify(v))
	}
	return samples
}

// AnalyzeColumns runs DetectCombined over every column and returns only the
// columns that look combined, in column order.
func AnalyzeColumns(rows []types.Row, columns []string, sampleSize int) []ColumnAnalysis {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	var results []ColumnAnalysis
	for _, column := range columns {
		samples := SampleValues(rows, column, sampleSize)
		detection := DetectCombined(samples)
		if !detection.IsCombined {
			continue
		}

		preview := samples
		if len(preview) > 3 {
			preview = preview[:3]
		}
		results = append(results, ColumnAnalysis{
			Column:    column,
			Detection: detection,
			Samples:   preview,
		})
	}
	return results
}

// =============================================================================
// Vehicle Listing Importer - Vehicle Transformer
// =============================================================================
//
// This module applies a confirmed column mapping to raw rows and produces one
// canonical Record per row, in row order.
//
// PER-ROW PIPELINE:
//   1. Combined columns are split (make/model/variant/year from free text,
//      color and variant from descriptions). Within a row the first combined
//      column to produce a field wins.
//   2. Plain columns are copied, except into fields already filled by step 1.
//   3. Year is reduced to its 4-digit token ("=2022" -> "2022").
//   4. Mileage is parsed; values under 500 are taken to be thousands.
//
// No row is ever rejected. Anything that cannot be interpreted is left empty
// or unchanged.
//
// =============================================================================

package vehicle

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/mapping"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/smartsplit"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// =============================================================================
// NORMALIZATION CONSTANTS
// =============================================================================

// mileageThousandsBelow and mileageThousandsFactor implement the rule that
// small odometer readings were entered in thousands.
const (
	mileageThousandsBelow  = 500
	mileageThousandsFactor = 1000
)

var (
	yearToken     = regexp.MustCompile(`\b(199[0-9]|20[0-3][0-9])\b`)
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
	mileageStrip  = strings.NewReplacer(",", "")
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Report counts what the heuristics did during a Transform call. It is
// purely diagnostic; records are identical with or without it.
type Report struct {
	Rows            int
	CombinedValues  int
	UnresolvedMakes int
	ColorsExtracted int
	YearsNormalized int
	MileageScaled   int
	MileageUnparsed int
}

// Transformer converts raw rows into vehicle records.
type Transformer struct{}

// NewTransformer creates a Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform maps every row through m.
func (t *Transformer) Transform(rows []types.Row, m *mapping.ColumnMapping) []Record {
	records, _ := t.TransformWithReport(rows, m)
	return records
}

// TransformWithReport is Transform plus heuristic counters.
func (t *Transformer) TransformWithReport(rows []types.Row, m *mapping.ColumnMapping) ([]Record, Report) {
	report := Report{Rows: len(rows)}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = t.transformRow(row, m, &report)
	}
	return records, report
}

// rowState accumulates one record and remembers which fields came from
// combined columns.
type rowState struct {
	record      Record
	comboFilled map[schema.FieldKey]bool
}

// fill sets key from a combined column unless it already has a value.
func (s *rowState) fill(key schema.FieldKey, value Value) bool {
	if value.IsEmpty() || !s.record.Get(key).IsEmpty() {
		return false
	}
	s.record[key] = value
	s.comboFilled[key] = true
	return true
}

func (t *Transformer) transformRow(row types.Row, m *mapping.ColumnMapping, report *Report) Record {
	state := &rowState{
		record:      make(Record),
		comboFilled: make(map[schema.FieldKey]bool),
	}

	// STEP 1: combined columns
	m.Each(func(column string, target schema.Target) {
		key, ok := target.(schema.CombinedKey)
		if !ok {
			return
		}
		raw := row[column]
		if types.IsEmpty(raw) {
			return
		}
		report.CombinedValues++

		switch key {
		case schema.CombinedMakeModel, schema.CombinedMakeModelVariant:
			parts := smartsplit.SplitAny(raw)
			if parts.Make == "" {
				report.UnresolvedMakes++
			}
			state.fill(schema.Make, Text(parts.Make))
			state.fill(schema.Model, Text(parts.Model))
			state.fill(schema.Year, Text(parts.Year))
			if key == schema.CombinedMakeModelVariant {
				state.fill(schema.Variant, Text(parts.Variant))
			}

		case schema.CombinedFullDescription:
			if state.fill(schema.Color, Text(smartsplit.ExtractColorAny(raw))) {
				report.ColorsExtracted++
			}
			state.fill(schema.Description, ValueOf(raw))

			// Separate from the color fallback: the text before the first
			// dash is taken as the variant.
			if text, ok := raw.(string); ok {
				segment := strings.TrimSpace(strings.Split(text, "-")[0])
				state.fill(schema.Variant, Text(segment))
			}
		}
	})

	// STEP 2: plain columns
	m.Each(func(column string, target schema.Target) {
		key, ok := target.(schema.FieldKey)
		if !ok || state.comboFilled[key] {
			return
		}
		state.record[key] = ValueOf(row[column])
	})

	record := state.record

	// STEP 3: year
	if year, ok := normalizeYear(record.Get(schema.Year)); ok {
		record[schema.Year] = year
		report.YearsNormalized++
	}

	// STEP 4: mileage
	if raw := record.Get(schema.Mileage); !raw.IsEmpty() {
		if mileage, scaled, ok := normalizeMileage(raw); ok {
			record[schema.Mileage] = mileage
			if scaled {
				report.MileageScaled++
			}
		} else {
			report.MileageUnparsed++
		}
	}

	return record
}

// =============================================================================
// NORMALIZERS
// =============================================================================

// normalizeYear extracts a 1990-2039 token from v.
func normalizeYear(v Value) (Value, bool) {
	if v.IsEmpty() {
		return v, false
	}
	match := yearToken.FindStringSubmatch(v.String())
	if match == nil {
		return v, false
	}
	return Text(match[1]), true
}

// normalizeMileage parses an odometer reading such as "45,000" or "45 000".
// Readings below 500 are multiplied by 1000. ok is false when no number can
// be read, in which case the caller keeps the raw value.
func normalizeMileage(v Value) (mileage Value, scaled bool, ok bool) {
	cleaned := strings.Join(strings.Fields(mileageStrip.Replace(v.String())), "")

	token := leadingNumber.FindString(cleaned)
	if token == "" {
		return v, false, false
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return v, false, false
	}

	if n < mileageThousandsBelow {
		return Number(n * mileageThousandsFactor), true, true
	}
	return Number(n), false, true
}

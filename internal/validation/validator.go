// =============================================================================
// Vehicle Listing Importer - Validation Engine
// =============================================================================
//
// This module checks a column mapping before import and the resulting
// records after it. It never rejects data on its own; it reports issues and
// lets the caller decide:
//   1. Mapping-level: missing required fields (error), several columns on
//      one field, combined columns shadowing direct ones, stale columns
//   2. Record-level: values the normalizers could not interpret (warnings)
//
// ERROR HANDLING:
//   - Issues are collected, not thrown
//   - Each issue names the field, the column and the data row
//   - "error" issues gate the import unless the caller allows them
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/mapping"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleRequiredField   = "required_field"
	RuleDuplicateTarget = "duplicate_target"
	RuleCombinedOverlap = "combined_overlap"
	RuleUnknownColumn   = "unknown_column"
	RuleYearFormat      = "year_format"
	RuleNumeric         = "numeric"
	RuleVINLength       = "vin_length"
)

// vinLength is the length of a modern (post-1981) VIN.
const vinLength = 17

var fourDigitYear = regexp.MustCompile(`^(199[0-9]|20[0-3][0-9])$`)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Severity is "error" (gates the import) or "warning".
	Severity string `yaml:"severity" json:"severity"`

	// Field is the schema key the issue is about.
	Field string `yaml:"field,omitempty" json:"field,omitempty"`

	// Column is the input column involved, if any.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`

	// Value is the offending value for record-level issues.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// Rule is the check that produced the issue.
	Rule string `yaml:"rule" json:"rule"`

	// Message is a human-readable description.
	Message string `yaml:"message" json:"message"`

	// RowNumber is the 1-indexed data row, 0 for mapping-level issues.
	RowNumber int `yaml:"row,omitempty" json:"row,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var where []string
	if e.RowNumber > 0 {
		where = append(where, fmt.Sprintf("Row %d", e.RowNumber))
	}
	if e.Column != "" {
		where = append(where, fmt.Sprintf("Column '%s'", e.Column))
	}
	if e.Field != "" {
		where = append(where, fmt.Sprintf("Field '%s'", e.Field))
	}

	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), strings.Join(where, ", "), e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all issues, warnings included, in discovery order.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RecordsValidated is the number of records checked.
	RecordsValidated int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: make([]*ValidationError, 0)}
}

func (r *ValidationResult) add(v *ValidationError, warningsAreErrors bool) {
	r.Errors = append(r.Errors, v)
	if v.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if warningsAreErrors {
		r.IsValid = false
	}
}

// Merge appends the issues of other to r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.ErrorCount += other.ErrorCount
	r.WarningCount += other.WarningCount
	r.RecordsValidated += other.RecordsValidated
	r.IsValid = r.IsValid && other.IsValid
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks mappings and records against a schema registry.
type Validator struct {
	registry *schema.Registry
	options  ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool

	// MaxRecordIssues caps record-level issues per rule so one bad column
	// does not flood the report. 0 means no cap.
	// Default: 50
	MaxRecordIssues int
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		TreatWarningsAsErrors: false,
		MaxRecordIssues:       50,
	}
}

// NewValidator creates a new Validator instance.
func NewValidator(registry *schema.Registry) *Validator {
	return NewValidatorWithOptions(registry, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(registry *schema.Registry, options ValidationOptions) *Validator {
	return &Validator{registry: registry, options: options}
}

// =============================================================================
// MAPPING VALIDATION
// =============================================================================

// ValidateMapping checks m against the registry. headers, when not nil, are
// the columns of the input file; mapped columns missing from it are stale.
func (v *Validator) ValidateMapping(m *mapping.ColumnMapping, headers []string) *ValidationResult {
	result := newResult()

	for _, key := range mapping.MissingRequired(m, v.registry) {
		result.add(&ValidationError{
			Severity: SeverityError,
			Field:    string(key),
			Rule:     RuleRequiredField,
			Message:  fmt.Sprintf("required field %s is not mapped", v.label(key)),
		}, v.options.TreatWarningsAsErrors)
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	directColumns := make(map[schema.FieldKey][]string)
	combinedSplits := make(map[schema.FieldKey]string)

	m.Each(func(column string, target schema.Target) {
		if headers != nil && !known[column] {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Column:   column,
				Field:    target.TargetKey(),
				Rule:     RuleUnknownColumn,
				Message:  "mapped column is not present in the input",
			}, v.options.TreatWarningsAsErrors)
		}

		switch t := target.(type) {
		case schema.FieldKey:
			directColumns[t] = append(directColumns[t], column)
		case schema.CombinedKey:
			if cf, ok := v.registry.CombinedField(t); ok {
				for _, key := range cf.SplitsTo {
					if _, seen := combinedSplits[key]; !seen {
						combinedSplits[key] = column
					}
				}
			}
		}
	})

	for _, f := range v.registry.Fields() {
		columns := directColumns[f.Key]
		if len(columns) > 1 {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    string(f.Key),
				Column:   strings.Join(columns, ", "),
				Rule:     RuleDuplicateTarget,
				Message:  fmt.Sprintf("%d columns map to %s; the last non-combined one wins", len(columns), f.Label),
			}, v.options.TreatWarningsAsErrors)
		}
		if combined, ok := combinedSplits[f.Key]; ok && len(columns) > 0 {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    string(f.Key),
				Column:   columns[0],
				Rule:     RuleCombinedOverlap,
				Message:  fmt.Sprintf("values split from %q take precedence over this column", combined),
			}, v.options.TreatWarningsAsErrors)
		}
	}

	return result
}

// =============================================================================
// RECORD VALIDATION
// =============================================================================

// ValidateRecords reports values the normalizers left uninterpreted. Only
// fields present in a record are checked.
func (v *Validator) ValidateRecords(records []vehicle.Record) *ValidationResult {
	result := newResult()
	result.RecordsValidated = len(records)
	perRule := make(map[string]int)

	report := func(issue *ValidationError) {
		perRule[issue.Rule]++
		if v.options.MaxRecordIssues > 0 && perRule[issue.Rule] > v.options.MaxRecordIssues {
			return
		}
		result.add(issue, v.options.TreatWarningsAsErrors)
	}

	for i, rec := range records {
		row := i + 1

		if year := rec.Get(schema.Year); !year.IsEmpty() && !fourDigitYear.MatchString(year.String()) {
			report(&ValidationError{
				Severity:  SeverityWarning,
				Field:     string(schema.Year),
				Value:     year.String(),
				Rule:      RuleYearFormat,
				Message:   "year is not a model year between 1990 and 2039",
				RowNumber: row,
			})
		}

		for _, key := range []schema.FieldKey{schema.Mileage, schema.Price} {
			value := rec.Get(key)
			if value.IsEmpty() {
				continue
			}
			if msg := validateNumeric(value); msg != "" {
				report(&ValidationError{
					Severity:  SeverityWarning,
					Field:     string(key),
					Value:     value.String(),
					Rule:      RuleNumeric,
					Message:   msg,
					RowNumber: row,
				})
			}
		}

		if vin := strings.TrimSpace(rec.Get(schema.VIN).String()); vin != "" && len(vin) != vinLength {
			report(&ValidationError{
				Severity:  SeverityWarning,
				Field:     string(schema.VIN),
				Value:     vin,
				Rule:      RuleVINLength,
				Message:   fmt.Sprintf("VIN has %d characters, expected %d", len(vin), vinLength),
				RowNumber: row,
			})
		}
	}

	return result
}

// validateNumeric accepts numbers and text that reads as a number once
// thousands separators and a currency prefix are removed.
func validateNumeric(value vehicle.Value) string {
	if _, ok := value.Float(); ok {
		return ""
	}
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(value.String())
	cleaned = strings.TrimLeft(cleaned, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$€£")
	if cleaned == "" {
		return "value is not numeric"
	}
	for _, r := range cleaned {
		if (r < '0' || r > '9') && r != '.' {
			return "value is not numeric"
		}
	}
	return ""
}

func (v *Validator) label(key schema.FieldKey) string {
	if f, ok := v.registry.Field(key); ok && f.Label != "" {
		return f.Label
	}
	return string(key)
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes FormatErrors output to filePath.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatErrors(errors)), 0o644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

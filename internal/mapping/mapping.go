// =============================================================================
// Vehicle Listing Importer - Column Mapping
// =============================================================================
//
// A ColumnMapping records, for one import, which schema target each raw
// column feeds. Columns that are absent from the mapping are skipped.
//
// ORDERING:
//   The mapping keeps insertion order. The transformer walks columns in this
//   order, so when two combined columns both produce a make, the one added
//   first wins. Mapping files preserve the order too.
//
// =============================================================================

package mapping

import (
	"errors"
	"fmt"
	"os"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"gopkg.in/yaml.v3"
)

// ErrUnknownField is returned when a mapping file names a target that is not
// in the schema registry.
var ErrUnknownField = errors.New("unknown schema field")

// ColumnMapping is an ordered raw column -> target mapping.
type ColumnMapping struct {
	columns []string
	targets map[string]schema.Target
}

// New creates an empty mapping.
func New() *ColumnMapping {
	return &ColumnMapping{targets: make(map[string]schema.Target)}
}

// Set maps a column to a target. Re-mapping a column keeps its position.
// A nil target is the same as Skip.
func (m *ColumnMapping) Set(column string, target schema.Target) {
	if target == nil {
		m.Skip(column)
		return
	}
	if _, exists := m.targets[column]; !exists {
		m.columns = append(m.columns, column)
	}
	m.targets[column] = target
}

// Skip removes a column from the mapping.
func (m *ColumnMapping) Skip(column string) {
	if _, exists := m.targets[column]; !exists {
		return
	}
	delete(m.targets, column)
	for i, c := range m.columns {
		if c == column {
			m.columns = append(m.columns[:i], m.columns[i+1:]...)
			break
		}
	}
}

// Target returns the target for a column.
func (m *ColumnMapping) Target(column string) (schema.Target, bool) {
	t, ok := m.targets[column]
	return t, ok
}

// Columns returns the mapped columns in insertion order.
func (m *ColumnMapping) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Len returns the number of mapped columns.
func (m *ColumnMapping) Len() int {
	return len(m.columns)
}

// Each calls fn for every mapped column in insertion order.
func (m *ColumnMapping) Each(fn func(column string, target schema.Target)) {
	for _, c := range m.columns {
		fn(c, m.targets[c])
	}
}

// Clone returns an independent copy.
func (m *ColumnMapping) Clone() *ColumnMapping {
	out := New()
	m.Each(out.Set)
	return out
}

// =============================================================================
// REQUIRED FIELDS
// =============================================================================

// MissingRequired returns the required field keys that no column maps to,
// in declared order. Only plain field targets are considered. An empty
// result means the mapping can be confirmed.
func MissingRequired(m *ColumnMapping, registry *schema.Registry) []schema.FieldKey {
	present := make(map[schema.FieldKey]bool)
	m.Each(func(_ string, target schema.Target) {
		if key, ok := target.(schema.FieldKey); ok {
			present[key] = true
		}
	})

	var missing []schema.FieldKey
	for _, key := range registry.RequiredKeys() {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	return missing
}

// =============================================================================
// MAPPING FILES
// =============================================================================

// fileEntry is one line of a mapping file. A list keeps column order, which
// a YAML mapping would not guarantee across tools.
type fileEntry struct {
	Column string `yaml:"column"`
	Field  string `yaml:"field"`
}

type mappingFile struct {
	Columns []fileEntry `yaml:"columns"`
}

// Load reads a mapping file. Entries with an empty field are skipped columns.
func Load(path string, registry *schema.Registry) (*ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}

	m := New()
	for _, entry := range file.Columns {
		if entry.Field == "" {
			continue
		}
		target, ok := registry.ParseTarget(entry.Field)
		if !ok {
			return nil, fmt.Errorf("column %q: %w: %s", entry.Column, ErrUnknownField, entry.Field)
		}
		m.Set(entry.Column, target)
	}
	return m, nil
}

// Save writes a mapping file in insertion order.
func Save(path string, m *ColumnMapping) error {
	var file mappingFile
	m.Each(func(column string, target schema.Target) {
		file.Columns = append(file.Columns, fileEntry{Column: column, Field: target.TargetKey()})
	})

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}

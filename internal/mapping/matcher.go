package mapping

import (
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/synonyms"
)

// Matcher proposes column mappings from raw column names.
type Matcher struct {
	registry   *schema.Registry
	dictionary *synonyms.Dictionary
}

// NewMatcher creates a matcher over a registry and synonym dictionary.
func NewMatcher(registry *schema.Registry, dictionary *synonyms.Dictionary) *Matcher {
	return &Matcher{registry: registry, dictionary: dictionary}
}

// AutoDetect maps each column to the first schema field, in declared order,
// with a synonym that equals, contains or is contained in the normalized
// column name. Matching is greedy: a field claimed by an earlier column is
// never reconsidered, even if a later column is a closer match. Columns with
// no match are left out of the mapping.
func (m *Matcher) AutoDetect(columns []string) *ColumnMapping {
	result := New()
	used := make(map[schema.FieldKey]bool)

	for _, column := range columns {
		normalized := synonyms.Normalize(column)

		for _, field := range m.registry.Fields() {
			if used[field.Key] {
				continue
			}
			if !matchesAny(normalized, m.dictionary.Synonyms(field.Key)) {
				continue
			}
			result.Set(column, field.Key)
			used[field.Key] = true
			break
		}
	}

	return result
}

func matchesAny(column string, list []string) bool {
	for _, syn := range list {
		if column == syn || strings.Contains(column, syn) || strings.Contains(syn, column) {
			return true
		}
	}
	return false
}

package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
)

// Criteria selects listings by field value. Empty values are ignored.
type Criteria map[schema.FieldKey]string

// OptionKeys are the fields offered as filter choices, in display order.
var OptionKeys = []schema.FieldKey{
	schema.Make,
	schema.Model,
	schema.Year,
	schema.Color,
	schema.BodyType,
	schema.FuelType,
	schema.Transmission,
}

// Filter returns the listings matching every non-empty criterion. Matching
// is case-insensitive equality on the listing's grouping or listing field.
func Filter(listings []Listing, criteria Criteria) []Listing {
	out := make([]Listing, 0, len(listings))
	for i := range listings {
		if matches(&listings[i], criteria) {
			out = append(out, listings[i])
		}
	}
	return out
}

func matches(l *Listing, criteria Criteria) bool {
	for key, want := range criteria {
		if want == "" {
			continue
		}
		if !strings.EqualFold(l.Value(key).String(), want) {
			return false
		}
	}
	return true
}

// FilterOptions returns the distinct non-empty values of each OptionKeys
// field. Values are sorted ascending, except year which is newest first.
func FilterOptions(listings []Listing) map[schema.FieldKey][]string {
	options := make(map[schema.FieldKey][]string, len(OptionKeys))

	for _, key := range OptionKeys {
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for i := range listings {
			v := listings[i].Value(key).String()
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}

		if key == schema.Year {
			sortYearsDescending(values)
		} else {
			sort.Strings(values)
		}
		options[key] = values
	}

	return options
}

// sortYearsDescending orders numerically when both values parse and falls
// back to reverse string order otherwise.
func sortYearsDescending(years []string) {
	sort.SliceStable(years, func(i, j int) bool {
		a, errA := strconv.ParseFloat(years[i], 64)
		b, errB := strconv.ParseFloat(years[j], 64)
		if errA == nil && errB == nil {
			return a > b
		}
		return years[i] > years[j]
	})
}

// Remove returns listings without the given IDs.
func Remove(listings []Listing, ids ...string) []Listing {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := drop[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// ParseCriteria reads "field=value" pairs such as "make=Audi". Unknown
// fields are reported back and left out of the criteria.
func ParseCriteria(pairs []string, registry *schema.Registry) (Criteria, []string) {
	criteria := make(Criteria)
	var invalid []string
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			invalid = append(invalid, pair)
			continue
		}
		key := schema.FieldKey(strings.TrimSpace(name))
		if _, known := registry.Field(key); !known {
			invalid = append(invalid, pair)
			continue
		}
		criteria[key] = strings.TrimSpace(value)
	}
	return criteria, invalid
}

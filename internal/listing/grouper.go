// =============================================================================
// Vehicle Listing Importer - Listing Grouper
// =============================================================================
//
// Vehicles that share make, model, year and color are one listing. The first
// vehicle seen for a key supplies the listing-level fields (variant, body
// type, ...); every vehicle contributes its own vehicle-level fields (VIN,
// price, ...) as a VehicleDetail.
//
// Output order is first-seen order of distinct keys, so grouping the same
// records twice yields identical results.
//
// =============================================================================

package listing

import (
	"math"
	"strings"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
)

// keySeparator joins the normalized grouping values into a listing ID.
const keySeparator = "_"

// VehicleDetail holds the vehicle-level fields of one vehicle in a listing.
type VehicleDetail map[schema.FieldKey]vehicle.Value

// Get returns the value for key, empty when unset.
func (d VehicleDetail) Get(key schema.FieldKey) vehicle.Value {
	return d[key]
}

// Listing is a group of vehicles sharing the grouping fields.
type Listing struct {
	ID       string          `json:"id" yaml:"id"`
	Grouping vehicle.Record  `json:"grouping" yaml:"grouping"`
	Fields   vehicle.Record  `json:"fields" yaml:"fields"`
	Vehicles []VehicleDetail `json:"vehicles" yaml:"vehicles"`
	Count    int             `json:"count" yaml:"count"`
}

// Value returns a grouping or listing-level field.
func (l *Listing) Value(key schema.FieldKey) vehicle.Value {
	if v, ok := l.Grouping[key]; ok {
		return v
	}
	return l.Fields.Get(key)
}

// Summary describes a set of listings.
type Summary struct {
	TotalListings         int     `json:"total_listings" yaml:"total_listings"`
	TotalVehicles         int     `json:"total_vehicles" yaml:"total_vehicles"`
	AvgVehiclesPerListing float64 `json:"avg_vehicles_per_listing" yaml:"avg_vehicles_per_listing"`
	UniqueMakes           int     `json:"unique_makes" yaml:"unique_makes"`
}

// Grouper groups vehicle records using the field groups of a registry.
type Grouper struct {
	groupingKeys []schema.FieldKey
	listingKeys  []schema.FieldKey
	vehicleKeys  []schema.FieldKey
}

// NewGrouper creates a Grouper for registry.
func NewGrouper(registry *schema.Registry) *Grouper {
	return &Grouper{
		groupingKeys: registry.KeysIn(schema.GroupGrouping),
		listingKeys:  registry.KeysIn(schema.GroupListing),
		vehicleKeys:  registry.KeysIn(schema.GroupVehicle),
	}
}

// defaultGrouper serves the package-level helpers. A Grouper is read-only
// after construction, so it is shared freely.
var defaultGrouper = NewGrouper(schema.Default())

// Group groups records with the default registry.
func Group(records []vehicle.Record) []Listing {
	return defaultGrouper.Group(records)
}

// Key returns the grouping key of a record with the default registry.
func Key(record vehicle.Record) string {
	return defaultGrouper.Key(record)
}

// Key builds the grouping key: each grouping value lowercased and trimmed,
// joined with "_". Missing values count as "".
func (g *Grouper) Key(record vehicle.Record) string {
	parts := make([]string, len(g.groupingKeys))
	for i, key := range g.groupingKeys {
		parts[i] = strings.ToLower(strings.TrimSpace(record.Get(key).String()))
	}
	return strings.Join(parts, keySeparator)
}

// Group folds records into listings in a single pass.
func (g *Grouper) Group(records []vehicle.Record) []Listing {
	listings := make([]Listing, 0)
	index := make(map[string]int)

	for _, record := range records {
		key := g.Key(record)

		pos, seen := index[key]
		if !seen {
			listings = append(listings, Listing{
				ID:       key,
				Grouping: snapshot(record, g.groupingKeys),
				Fields:   snapshot(record, g.listingKeys),
				Vehicles: make([]VehicleDetail, 0, 1),
			})
			pos = len(listings) - 1
			index[key] = pos
		}

		l := &listings[pos]
		l.Vehicles = append(l.Vehicles, VehicleDetail(snapshot(record, g.vehicleKeys)))
		l.Count++
	}

	return listings
}

// snapshot copies keys out of record. Unset keys are kept as empty values
// so every listing carries the same columns.
func snapshot(record vehicle.Record, keys []schema.FieldKey) vehicle.Record {
	out := make(vehicle.Record, len(keys))
	for _, key := range keys {
		out[key] = record.Get(key)
	}
	return out
}

// Stats summarizes listings. The average is rounded to one decimal and is
// 0 when there are no listings.
func Stats(listings []Listing) Summary {
	summary := Summary{TotalListings: len(listings)}
	makes := make(map[string]struct{})

	for i := range listings {
		summary.TotalVehicles += listings[i].Count
		if brand := listings[i].Value(schema.Make).String(); brand != "" {
			makes[brand] = struct{}{}
		}
	}

	if summary.TotalListings > 0 {
		avg := float64(summary.TotalVehicles) / float64(summary.TotalListings)
		summary.AvgVehiclesPerListing = math.Round(avg*10) / 10
	}
	summary.UniqueMakes = len(makes)

	return summary
}

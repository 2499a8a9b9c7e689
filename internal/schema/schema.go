// =============================================================================
// Vehicle Listing Importer - Schema Registry
// =============================================================================
//
// This package declares the canonical vehicle schema every import is mapped
// onto. Fields belong to one of four groups:
//   - grouping : make, model, year, color (define a listing)
//   - listing  : shared by every vehicle in a listing (first vehicle wins)
//   - vehicle  : specific to each vehicle (VIN, mileage, price, ...)
//   - combined : free-text columns that are split into several fields
//
// DECLARATION ORDER:
//   The order of the tables below is observable. The synonym matcher scans
//   fields in exactly this order, so reordering them changes auto-mapping
//   results on real dealer files.
//
// =============================================================================

package schema

// =============================================================================
// KEYS AND TARGETS
// =============================================================================

// Group identifies which part of a listing a field belongs to.
type Group string

const (
	GroupGrouping Group = "grouping"
	GroupListing  Group = "listing"
	GroupVehicle  Group = "vehicle"
	GroupCombined Group = "combined"
)

// Target is anything a raw column can be mapped to. It is implemented only
// by FieldKey and CombinedKey, so callers branch with a type switch.
type Target interface {
	// TargetKey returns the string form used in mapping files and output.
	TargetKey() string
	isTarget()
}

// FieldKey identifies a plain schema field.
type FieldKey string

func (k FieldKey) TargetKey() string { return string(k) }
func (FieldKey) isTarget()           {}

// CombinedKey identifies a combined free-text field.
type CombinedKey string

func (k CombinedKey) TargetKey() string { return string(k) }
func (CombinedKey) isTarget()           {}

// Grouping fields.
const (
	Make  FieldKey = "make"
	Model FieldKey = "model"
	Year  FieldKey = "year"
	Color FieldKey = "color"
)

// Listing fields.
const (
	Variant         FieldKey = "variant"
	BodyType        FieldKey = "bodyType"
	FuelType        FieldKey = "fuelType"
	Transmission    FieldKey = "transmission"
	Drivetrain      FieldKey = "drivetrain"
	EngineSize      FieldKey = "engineSize"
	Cylinders       FieldKey = "cylinders"
	Horsepower      FieldKey = "horsepower"
	SeatingCapacity FieldKey = "seatingCapacity"
	Doors           FieldKey = "doors"
	Condition       FieldKey = "condition"
	RegionalSpecs   FieldKey = "regionalSpecs"
	City            FieldKey = "city"
	Country         FieldKey = "country"
	Description     FieldKey = "description"
)

// Vehicle fields.
const (
	VIN                FieldKey = "vin"
	RegistrationNumber FieldKey = "registrationNumber"
	Mileage            FieldKey = "mileage"
	Owners             FieldKey = "owners"
	Warranty           FieldKey = "warranty"
	Price              FieldKey = "price"
)

// Combined fields.
const (
	CombinedMakeModel        CombinedKey = "combined_make_model"
	CombinedMakeModelVariant CombinedKey = "combined_make_model_variant"
	CombinedFullDescription  CombinedKey = "combined_full_description"
)

// =============================================================================
// FIELD DEFINITIONS
// =============================================================================

// Field describes a plain schema field.
type Field struct {
	Key      FieldKey
	Label    string
	Group    Group
	Required bool
}

// CombinedField describes a combined column type and the fields it fills.
type CombinedField struct {
	Key         CombinedKey
	Label       string
	Description string
	SplitsTo    []FieldKey
}

// Registry holds the schema tables. It is built once and treated as
// read-only configuration afterwards.
type Registry struct {
	fields   []Field
	combined []CombinedField
	byKey    map[FieldKey]int
	byCombo  map[CombinedKey]int
}

// NewRegistry builds a registry from field tables. The fields slice must be
// ordered grouping, listing, vehicle; the order is preserved verbatim.
func NewRegistry(fields []Field, combined []CombinedField) *Registry {
	r := &Registry{
		fields:   append([]Field(nil), fields...),
		combined: append([]CombinedField(nil), combined...),
		byKey:    make(map[FieldKey]int, len(fields)),
		byCombo:  make(map[CombinedKey]int, len(combined)),
	}
	for i, f := range r.fields {
		r.byKey[f.Key] = i
	}
	for i, c := range r.combined {
		r.byCombo[c.Key] = i
	}
	return r
}

// Default returns the registry with the standard vehicle schema.
func Default() *Registry {
	return NewRegistry(defaultFields(), defaultCombined())
}

func defaultFields() []Field {
	return []Field{
		// Grouping fields (used to create a single listing)
		{Key: Make, Label: "Make/Brand", Group: GroupGrouping, Required: true},
		{Key: Model, Label: "Model", Group: GroupGrouping, Required: true},
		{Key: Year, Label: "Year", Group: GroupGrouping, Required: true},
		{Key: Color, Label: "Color", Group: GroupGrouping, Required: true},

		// Listing fields (same for all vehicles in a listing)
		{Key: Variant, Label: "Variant", Group: GroupListing},
		{Key: BodyType, Label: "Body Type", Group: GroupListing},
		{Key: FuelType, Label: "Fuel Type", Group: GroupListing},
		{Key: Transmission, Label: "Transmission", Group: GroupListing},
		{Key: Drivetrain, Label: "Drivetrain", Group: GroupListing},
		{Key: EngineSize, Label: "Engine Size", Group: GroupListing},
		{Key: Cylinders, Label: "Cylinders", Group: GroupListing},
		{Key: Horsepower, Label: "Horsepower", Group: GroupListing},
		{Key: SeatingCapacity, Label: "Seating Capacity", Group: GroupListing},
		{Key: Doors, Label: "Number of Doors", Group: GroupListing},
		{Key: Condition, Label: "Condition", Group: GroupListing},
		{Key: RegionalSpecs, Label: "Regional Specs", Group: GroupListing},
		{Key: City, Label: "City", Group: GroupListing},
		{Key: Country, Label: "Country", Group: GroupListing},
		{Key: Description, Label: "Description", Group: GroupListing},

		// Vehicle-specific fields (different for each vehicle)
		{Key: VIN, Label: "VIN", Group: GroupVehicle, Required: true},
		{Key: RegistrationNumber, Label: "Registration Number", Group: GroupVehicle},
		{Key: Mileage, Label: "Mileage", Group: GroupVehicle},
		{Key: Owners, Label: "Number of Owners", Group: GroupVehicle},
		{Key: Warranty, Label: "Warranty Period", Group: GroupVehicle},
		{Key: Price, Label: "Price", Group: GroupVehicle},
	}
}

func defaultCombined() []CombinedField {
	return []CombinedField{
		{
			Key:         CombinedMakeModel,
			Label:       "Make + Model (Combined)",
			Description: `Auto-splits "Audi A6" into Make: Audi, Model: A6`,
			SplitsTo:    []FieldKey{Make, Model},
		},
		{
			Key:         CombinedMakeModelVariant,
			Label:       "Make + Model + Variant (Combined)",
			Description: `Auto-splits "VW Tiguan 330TSI Luxury" into separate fields`,
			SplitsTo:    []FieldKey{Make, Model, Variant},
		},
		{
			Key:         CombinedFullDescription,
			Label:       "Full Vehicle Description",
			Description: `Extracts color from description like "...Black Interior - Sky Blue"`,
			SplitsTo:    []FieldKey{Variant, Color},
		},
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Fields returns all plain fields in declared order.
func (r *Registry) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Combined returns all combined fields in declared order.
func (r *Registry) Combined() []CombinedField {
	return append([]CombinedField(nil), r.combined...)
}

// Field returns the definition of a plain field.
func (r *Registry) Field(key FieldKey) (Field, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// CombinedField returns the definition of a combined field.
func (r *Registry) CombinedField(key CombinedKey) (CombinedField, bool) {
	i, ok := r.byCombo[key]
	if !ok {
		return CombinedField{}, false
	}
	return r.combined[i], true
}

// KeysIn returns the keys of a group in declared order.
func (r *Registry) KeysIn(group Group) []FieldKey {
	var keys []FieldKey
	for _, f := range r.fields {
		if f.Group == group {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// RequiredKeys returns the keys of required fields in declared order.
func (r *Registry) RequiredKeys() []FieldKey {
	var keys []FieldKey
	for _, f := range r.fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// ParseTarget resolves a mapping file value ("make", "combined_make_model")
// to a Target. Unknown keys return false.
func (r *Registry) ParseTarget(key string) (Target, bool) {
	if _, ok := r.byKey[FieldKey(key)]; ok {
		return FieldKey(key), true
	}
	if _, ok := r.byCombo[CombinedKey(key)]; ok {
		return CombinedKey(key), true
	}
	return nil, false
}

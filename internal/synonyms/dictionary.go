// =============================================================================
// Vehicle Listing Importer - Synonym Dictionary
// =============================================================================
//
// The dictionary maps each schema field to the column-name spellings seen in
// dealer exports. It is the only shared mutable state in the importer:
//   - Reads are safe from any goroutine.
//   - Add is append-only and serialized through a write lock.
//
// CUSTOMIZATION:
//   Add synonyms at runtime with Add, or ship them in a YAML overlay file
//   (see LoadOverlay) instead of editing the built-in table.
//
// =============================================================================

package synonyms

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"gopkg.in/yaml.v3"
)

// Dictionary is a field key -> ordered synonym list table.
type Dictionary struct {
	mu      sync.RWMutex
	entries map[schema.FieldKey][]string
}

// New creates a dictionary from a table. Synonyms are normalized and
// de-duplicated; the input map is not retained.
func New(table map[schema.FieldKey][]string) *Dictionary {
	d := &Dictionary{entries: make(map[schema.FieldKey][]string, len(table))}
	for key, list := range table {
		d.entries[key] = make([]string, 0, len(list))
		for _, syn := range list {
			d.appendLocked(key, syn)
		}
	}
	return d
}

// Default returns a dictionary seeded with the built-in synonyms.
func Default() *Dictionary {
	return New(defaultTable())
}

// Synonyms returns a copy of the synonyms for a field, in insertion order.
func (d *Dictionary) Synonyms(key schema.FieldKey) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.entries[key]...)
}

// Has reports whether the dictionary knows the field key.
func (d *Dictionary) Has(key schema.FieldKey) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.entries[key]
	return ok
}

// Add appends a synonym to a field's list. It returns false without
// changing anything when the field key is unknown or the synonym is
// already present.
func (d *Dictionary) Add(key schema.FieldKey, synonym string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.entries[key]; !ok {
		return false
	}
	return d.appendLocked(key, synonym)
}

func (d *Dictionary) appendLocked(key schema.FieldKey, synonym string) bool {
	normalized := Normalize(synonym)
	for _, existing := range d.entries[key] {
		if existing == normalized {
			return false
		}
	}
	d.entries[key] = append(d.entries[key], normalized)
	return true
}

// Normalize lowercases and trims a column name or synonym.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// =============================================================================
// OVERLAY FILES
// =============================================================================

// LoadOverlay reads a YAML file of the form
//
//	make: [marque, fabricante]
//	mileage: [odo]
//
// and adds every entry through Add. Unknown field keys are reported back
// rather than treated as errors so one stale entry does not block an import.
func (d *Dictionary) LoadOverlay(path string) (added int, unknown []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var overlay yaml.Node
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return 0, nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}
	if len(overlay.Content) == 0 {
		return 0, nil, nil
	}

	// Decode through the node tree so entries are applied in file order.
	root := overlay.Content[0]
	if root.Kind != yaml.MappingNode {
		return 0, nil, fmt.Errorf("synonyms file must be a mapping of field to list")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		field := root.Content[i].Value
		var list []string
		if err := root.Content[i+1].Decode(&list); err != nil {
			return added, unknown, fmt.Errorf("invalid synonyms for %q: %w", field, err)
		}
		if !d.Has(schema.FieldKey(field)) {
			unknown = append(unknown, field)
			continue
		}
		for _, syn := range list {
			if d.Add(schema.FieldKey(field), syn) {
				added++
			}
		}
	}
	return added, unknown, nil
}

// =============================================================================
// BUILT-IN TABLE
// =============================================================================

// defaultTable holds the column spellings collected from dealer exports.
// Add more synonyms as new dealer formats show up.
func defaultTable() map[schema.FieldKey][]string {
	return map[schema.FieldKey][]string{
		// Grouping fields
		schema.Make:  {"make", "brand", "manufacturer", "oem", "car make", "vehicle make"},
		schema.Model: {"model", "model name", "car model", "vehicle model"},
		schema.Year:  {"year", "model year", "manufacturing year", "mfg year", "yr", "production year"},
		schema.Color: {"color", "colour", "exterior color", "body color", "ext color", "paint color"},

		// Listing fields
		schema.Variant:         {"variant", "trim", "trim level", "version", "grade", "spec level"},
		schema.BodyType:        {"body type", "body", "type", "body style", "vehicle type", "car type"},
		schema.FuelType:        {"fuel type", "fuel", "engine type", "power type", "propulsion"},
		schema.Transmission:    {"transmission", "gearbox", "trans", "gear type", "transmission type"},
		schema.Drivetrain:      {"drivetrain", "drive", "drive type", "wheel drive", "driven wheels"},
		schema.EngineSize:      {"engine size", "engine", "displacement", "cc", "engine capacity", "engine cc", "liters", "litres"},
		schema.Cylinders:       {"cylinders", "cyl", "no of cylinders", "cylinder count", "cyls"},
		schema.Horsepower:      {"horsepower", "hp", "power", "bhp", "horse power", "ps", "kw"},
		schema.SeatingCapacity: {"seating capacity", "seats", "seating", "passengers", "no of seats", "seat count"},
		schema.Doors:           {"doors", "number of doors", "no of doors", "door count"},
		schema.Condition:       {"condition", "vehicle condition", "state", "car condition"},
		schema.RegionalSpecs:   {"regional specs", "specs", "specification", "region", "market"},
		schema.City:            {"city", "location", "dealer city"},
		schema.Country:         {"country", "nation", "dealer country"},
		schema.Description:     {"description", "details", "about", "notes", "remarks", "comments"},

		// Vehicle-specific fields
		schema.VIN:                {"vin", "vehicle identification number", "chassis number", "chassis", "vin number", "chassis no"},
		schema.RegistrationNumber: {"registration number", "reg number", "registration", "plate number", "license plate", "number plate", "reg no", "plate"},
		schema.Mileage:            {"mileage", "kms driven", "kilometers", "odometer", "odometer reading", "km", "miles", "kms", "distance", "run"},
		schema.Owners:             {"owners", "no of owners", "number of owners", "previous owners", "owner count", "ownership"},
		schema.Warranty:           {"warranty", "warranty period", "warranty status", "warranty remaining"},
		schema.Price:              {"price", "asking price", "cost", "amount", "selling price", "rate", "value"},
	}
}

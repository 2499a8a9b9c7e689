package listing

import (
	"sync"
	"testing"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/mapping"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fields map[schema.FieldKey]string) vehicle.Record {
	rec := make(vehicle.Record, len(fields))
	for k, v := range fields {
		rec[k] = vehicle.Text(v)
	}
	return rec
}

func TestKey_CaseAndWhitespaceInvariant(t *testing.T) {
	a := record(map[schema.FieldKey]string{
		schema.Make: "Audi", schema.Model: "A6", schema.Year: "2020", schema.Color: "Black",
	})
	b := record(map[schema.FieldKey]string{
		schema.Make: "  AUDI ", schema.Model: "a6", schema.Year: " 2020", schema.Color: "black\t",
	})

	assert.Equal(t, "audi_a6_2020_black", Key(a))
	assert.Equal(t, Key(a), Key(b))
}

func TestKey_MissingValues(t *testing.T) {
	rec := vehicle.Record{schema.Make: vehicle.Text("Kia"), schema.Year: vehicle.Number(2021)}
	assert.Equal(t, "kia__2021_", Key(rec))
}

func TestDefaultGrouper_SharedAcrossCalls(t *testing.T) {
	rec := record(map[schema.FieldKey]string{
		schema.Make: "Kia", schema.Model: "Rio", schema.Year: "2021", schema.Color: "Red", schema.VIN: "VIN1",
	})
	explicit := NewGrouper(schema.Default())

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i] = Key(rec)
		}(i)
	}
	wg.Wait()
	for _, k := range keys {
		assert.Equal(t, explicit.Key(rec), k)
	}

	first := Group([]vehicle.Record{rec})
	first[0].Vehicles = append(first[0].Vehicles, VehicleDetail{})
	second := Group([]vehicle.Record{rec})
	assert.Equal(t, explicit.Group([]vehicle.Record{rec}), second)
	assert.Len(t, second[0].Vehicles, 1)
}

func TestGroup_FirstWriterWins(t *testing.T) {
	first := record(map[schema.FieldKey]string{
		schema.Make: "Audi", schema.Model: "A6", schema.Variant: "quattro", schema.VIN: "VIN1",
	})
	second := record(map[schema.FieldKey]string{
		schema.Make: "audi", schema.Model: "A6 ", schema.Variant: "sport", schema.VIN: "VIN2",
	})

	listings := Group([]vehicle.Record{first, second})
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "quattro", l.Value(schema.Variant).String())
	assert.Equal(t, "Audi", l.Value(schema.Make).String())
	assert.Equal(t, 2, l.Count)
	require.Len(t, l.Vehicles, 2)
	assert.Equal(t, "VIN1", l.Vehicles[0].Get(schema.VIN).String())
	assert.Equal(t, "VIN2", l.Vehicles[1].Get(schema.VIN).String())
}

func TestGroup_FirstSeenOrderAndIdempotence(t *testing.T) {
	records := []vehicle.Record{
		record(map[schema.FieldKey]string{schema.Make: "Kia", schema.Model: "Rio"}),
		record(map[schema.FieldKey]string{schema.Make: "Audi", schema.Model: "A4"}),
		record(map[schema.FieldKey]string{schema.Make: "Kia", schema.Model: "Rio"}),
		record(map[schema.FieldKey]string{schema.Make: "Ford", schema.Model: "Focus"}),
	}

	first := Group(records)
	second := Group(records)

	require.Len(t, first, 3)
	assert.Equal(t, []string{"kia_rio__", "audi_a4__", "ford_focus__"},
		[]string{first[0].ID, first[1].ID, first[2].ID})
	assert.Equal(t, first, second)
}

func TestGroup_VehicleDetailHoldsOnlyVehicleFields(t *testing.T) {
	rec := record(map[schema.FieldKey]string{
		schema.Make: "Audi", schema.BodyType: "Sedan", schema.Price: "32000",
	})

	l := Group([]vehicle.Record{rec})[0]
	detail := l.Vehicles[0]

	assert.Len(t, detail, len(schema.Default().KeysIn(schema.GroupVehicle)))
	assert.Equal(t, "32000", detail.Get(schema.Price).String())
	_, hasMake := detail[schema.Make]
	assert.False(t, hasMake)
	assert.Equal(t, "Sedan", l.Fields.Get(schema.BodyType).String())
}

func TestGroup_Empty(t *testing.T) {
	listings := Group(nil)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestGroup_EndToEnd(t *testing.T) {
	m := mapping.New()
	m.Set("Make", schema.Make)
	m.Set("Model", schema.Model)
	m.Set("Year", schema.Year)
	m.Set("Colour", schema.Color)
	m.Set("VIN", schema.VIN)
	m.Set("Price", schema.Price)

	rows := []types.Row{
		{"Make": "Toyota", "Model": "Camry", "Year": 2021.0, "Colour": "White", "VIN": "JT1", "Price": 28000.0},
		{"Make": "Toyota", "Model": "Camry", "Year": 2021.0, "Colour": "White", "VIN": "JT2", "Price": 29500.0},
	}

	records := vehicle.NewTransformer().Transform(rows, m)
	listings := Group(records)

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, 2, l.Count)
	require.Len(t, l.Vehicles, 2)
	assert.Equal(t, "JT1", l.Vehicles[0].Get(schema.VIN).String())
	assert.Equal(t, vehicle.Number(28000), l.Vehicles[0].Get(schema.Price))
	assert.Equal(t, "JT2", l.Vehicles[1].Get(schema.VIN).String())
	assert.Equal(t, vehicle.Number(29500), l.Vehicles[1].Get(schema.Price))
}

func TestStats(t *testing.T) {
	listings := Group([]vehicle.Record{
		record(map[schema.FieldKey]string{schema.Make: "Audi", schema.Model: "A4"}),
		record(map[schema.FieldKey]string{schema.Make: "Audi", schema.Model: "A4"}),
		record(map[schema.FieldKey]string{schema.Make: "Audi", schema.Model: "A6"}),
		record(map[schema.FieldKey]string{schema.Model: "Unknown"}),
	})

	stats := Stats(listings)
	assert.Equal(t, 3, stats.TotalListings)
	assert.Equal(t, 4, stats.TotalVehicles)
	assert.Equal(t, 1.3, stats.AvgVehiclesPerListing)
	assert.Equal(t, 1, stats.UniqueMakes)
}

func TestStats_NoListings(t *testing.T) {
	assert.Equal(t, Summary{}, Stats(nil))
}

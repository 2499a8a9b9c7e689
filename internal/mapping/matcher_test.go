package mapping

import (
	"testing"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/synonyms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher() *Matcher {
	return NewMatcher(schema.Default(), synonyms.Default())
}

func TestAutoDetect_StandardHeaders(t *testing.T) {
	m := newTestMatcher().AutoDetect([]string{"Make", "Model", "Year", "Colour", "VIN", "Price", "Mileage (km)"})

	expected := map[string]schema.Target{
		"Make":         schema.Make,
		"Model":        schema.Model,
		"Year":         schema.Year,
		"Colour":       schema.Color,
		"VIN":          schema.VIN,
		"Price":        schema.Price,
		"Mileage (km)": schema.Mileage,
	}
	require.Equal(t, len(expected), m.Len())
	for column, target := range expected {
		got, ok := m.Target(column)
		require.True(t, ok, column)
		assert.Equal(t, target, got, column)
	}
}

func TestAutoDetect_FieldClaimedOnce(t *testing.T) {
	m := newTestMatcher().AutoDetect([]string{"Make", "Brand"})

	target, ok := m.Target("Make")
	require.True(t, ok)
	assert.Equal(t, schema.Make, target)

	_, ok = m.Target("Brand")
	assert.False(t, ok, "second make synonym must stay unmapped")
	assert.Equal(t, []string{"Make"}, m.Columns())
}

func TestAutoDetect_GreedyInColumnOrder(t *testing.T) {
	// "Vehicle Type" contains "type" and claims bodyType first, so the
	// better match "Body Type" gets nothing.
	m := newTestMatcher().AutoDetect([]string{"Vehicle Type", "Body Type"})

	target, ok := m.Target("Vehicle Type")
	require.True(t, ok)
	assert.Equal(t, schema.BodyType, target)

	_, ok = m.Target("Body Type")
	assert.False(t, ok)
}

func TestAutoDetect_ColumnOrderChangesResult(t *testing.T) {
	m := newTestMatcher().AutoDetect([]string{"Body Type", "Vehicle Type"})

	target, ok := m.Target("Body Type")
	require.True(t, ok)
	assert.Equal(t, schema.BodyType, target)

	_, ok = m.Target("Vehicle Type")
	assert.False(t, ok)
}

func TestAutoDetect_SynonymContainsColumn(t *testing.T) {
	// "chassis n" is contained in "chassis number"
	m := newTestMatcher().AutoDetect([]string{"  Chassis N  "})
	target, ok := m.Target("  Chassis N  ")
	require.True(t, ok)
	assert.Equal(t, schema.VIN, target)
}

func TestAutoDetect_NoStateLeaksBetweenCalls(t *testing.T) {
	matcher := newTestMatcher()

	first := matcher.AutoDetect([]string{"Make"})
	second := matcher.AutoDetect([]string{"Brand"})

	_, ok := first.Target("Make")
	assert.True(t, ok)
	target, ok := second.Target("Brand")
	require.True(t, ok)
	assert.Equal(t, schema.Make, target)
}

func TestAutoDetect_UsesAddedSynonyms(t *testing.T) {
	dict := synonyms.Default()
	matcher := NewMatcher(schema.Default(), dict)

	_, ok := matcher.AutoDetect([]string{"Marque"}).Target("Marque")
	assert.False(t, ok)

	dict.Add(schema.Make, "marque")
	target, ok := matcher.AutoDetect([]string{"Marque"}).Target("Marque")
	require.True(t, ok)
	assert.Equal(t, schema.Make, target)
}

func TestAutoDetect_UnmatchedColumnsAbsent(t *testing.T) {
	m := newTestMatcher().AutoDetect([]string{"Stock #", "Make"})
	assert.Equal(t, []string{"Make"}, m.Columns())
}

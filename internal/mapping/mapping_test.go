package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMapping_KeepsInsertionOrder(t *testing.T) {
	m := New()
	m.Set("Vehicle", schema.CombinedMakeModel)
	m.Set("Year", schema.Year)
	m.Set("Price", schema.Price)
	m.Set("Vehicle", schema.CombinedMakeModelVariant)

	assert.Equal(t, []string{"Vehicle", "Year", "Price"}, m.Columns())
	target, _ := m.Target("Vehicle")
	assert.Equal(t, schema.CombinedMakeModelVariant, target)

	m.Skip("Year")
	assert.Equal(t, []string{"Vehicle", "Price"}, m.Columns())

	m.Set("Price", nil)
	assert.Equal(t, []string{"Vehicle"}, m.Columns())
}

func TestColumnMapping_Clone(t *testing.T) {
	m := New()
	m.Set("Make", schema.Make)

	c := m.Clone()
	c.Set("Model", schema.Model)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}

func TestMissingRequired(t *testing.T) {
	registry := schema.Default()

	m := New()
	m.Set("Make", schema.Make)
	m.Set("Year", schema.Year)
	assert.Equal(t, []schema.FieldKey{schema.Model, schema.Color, schema.VIN}, MissingRequired(m, registry))

	m.Set("Model", schema.Model)
	m.Set("Color", schema.Color)
	m.Set("Chassis", schema.VIN)
	assert.Empty(t, MissingRequired(m, registry))
}

func TestMissingRequired_CombinedDoesNotCover(t *testing.T) {
	m := New()
	m.Set("Vehicle", schema.CombinedMakeModel)

	missing := MissingRequired(m, schema.Default())
	assert.Contains(t, missing, schema.Make)
	assert.Contains(t, missing, schema.Model)
}

func TestSaveLoad(t *testing.T) {
	registry := schema.Default()
	path := filepath.Join(t.TempDir(), "mapping.yaml")

	m := New()
	m.Set("Material Name", schema.CombinedFullDescription)
	m.Set("Vehicle", schema.CombinedMakeModelVariant)
	m.Set("Chassis", schema.VIN)
	require.NoError(t, Save(path, m))

	loaded, err := Load(path, registry)
	require.NoError(t, err)
	assert.Equal(t, m.Columns(), loaded.Columns())
	target, _ := loaded.Target("Chassis")
	assert.Equal(t, schema.VIN, target)
}

func TestLoad_SkipsEmptyAndRejectsUnknown(t *testing.T) {
	registry := schema.Default()
	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(ok, []byte("columns:\n  - column: Stock\n    field: \"\"\n  - column: Make\n    field: make\n"), 0o644))
	m, err := Load(ok, registry)
	require.NoError(t, err)
	assert.Equal(t, []string{"Make"}, m.Columns())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("columns:\n  - column: Rims\n    field: wheels\n"), 0o644))
	_, err = Load(bad, registry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

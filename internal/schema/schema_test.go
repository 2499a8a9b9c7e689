package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_DeclaredOrder(t *testing.T) {
	r := Default()

	assert.Equal(t, []FieldKey{Make, Model, Year, Color}, r.KeysIn(GroupGrouping))
	assert.Equal(t, []FieldKey{VIN, RegistrationNumber, Mileage, Owners, Warranty, Price}, r.KeysIn(GroupVehicle))

	listing := r.KeysIn(GroupListing)
	require.Len(t, listing, 15)
	assert.Equal(t, Variant, listing[0])
	assert.Equal(t, Description, listing[len(listing)-1])

	fields := r.Fields()
	require.Len(t, fields, 25)
	assert.Equal(t, Make, fields[0].Key)
	assert.Equal(t, Variant, fields[4].Key)
	assert.Equal(t, VIN, fields[19].Key)
}

func TestDefault_RequiredKeys(t *testing.T) {
	assert.Equal(t, []FieldKey{Make, Model, Year, Color, VIN}, Default().RequiredKeys())
}

func TestParseTarget(t *testing.T) {
	r := Default()

	tgt, ok := r.ParseTarget("price")
	require.True(t, ok)
	assert.Equal(t, Price, tgt)

	tgt, ok = r.ParseTarget("combined_full_description")
	require.True(t, ok)
	assert.Equal(t, CombinedFullDescription, tgt)

	_, ok = r.ParseTarget("wheels")
	assert.False(t, ok)
}

func TestCombinedField_SplitsTo(t *testing.T) {
	c, ok := Default().CombinedField(CombinedMakeModelVariant)
	require.True(t, ok)
	assert.Equal(t, []FieldKey{Make, Model, Variant}, c.SplitsTo)
}

package smartsplit

import (
	"testing"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCombined(t *testing.T) {
	d := DetectCombined([]string{"Audi A6", "GAC Honda Accord", "Sedan", ""})

	assert.True(t, d.IsCombined)
	assert.InDelta(t, 2.0/3.0, d.Confidence, 1e-9)
	// KnownMakes order decides which make is recorded for "GAC Honda".
	assert.Equal(t, []string{"Audi", "Honda"}, d.DetectedMakes)
}

func TestDetectCombined_Threshold(t *testing.T) {
	assert.True(t, DetectCombined([]string{"Audi A4", "x", "y"}).IsCombined)
	assert.False(t, DetectCombined([]string{"Audi A4", "a", "b", "c"}).IsCombined)
}

func TestDetectCombined_WholeWordOnly(t *testing.T) {
	d := DetectCombined([]string{"Minivan", "Seating"})
	assert.False(t, d.IsCombined)
	assert.Zero(t, d.Confidence)
}

func TestDetectCombined_NoSamples(t *testing.T) {
	for _, samples := range [][]string{nil, {}, {"", ""}} {
		d := DetectCombined(samples)
		assert.False(t, d.IsCombined)
		assert.Zero(t, d.Confidence)
		assert.Empty(t, d.DetectedMakes)
	}
}

func TestDetectCombined_DistinctMakes(t *testing.T) {
	d := DetectCombined([]string{"audi a4", "AUDI Q5", "Kia Rio"})
	assert.Equal(t, []string{"Audi", "Kia"}, d.DetectedMakes)
	assert.Equal(t, 1.0, d.Confidence)
}

func TestSampleValues(t *testing.T) {
	rows := []types.Row{
		{"Vehicle": "Audi A6"},
		{"Vehicle": nil},
		{"Other": "x"},
		{"Vehicle": 2020.0},
		{"Vehicle": "late row"},
	}

	assert.Equal(t, []string{"Audi A6", "2020"}, SampleValues(rows, "Vehicle", 4))
	assert.Equal(t, []string{"Audi A6", "2020", "late row"}, SampleValues(rows, "Vehicle", 50))
}

func TestAnalyzeColumns(t *testing.T) {
	rows := []types.Row{
		{"Vehicle": "VW Tiguan 330TSI", "Body": "SUV", "Price": 32000.0},
		{"Vehicle": "GAC Honda Accord", "Body": "Sedan", "Price": 28000.0},
		{"Vehicle": "Audi A6 2020", "Body": "Sedan", "Price": 45000.0},
		{"Vehicle": "Toyota Camry", "Body": "Sedan", "Price": 30000.0},
	}

	results := AnalyzeColumns(rows, []string{"Body", "Vehicle", "Price"}, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "Vehicle", results[0].Column)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Len(t, results[0].Samples, 3)
	assert.Equal(t, []string{"VW", "Honda", "Audi", "Toyota"}, results[0].DetectedMakes)
}

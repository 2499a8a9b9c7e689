package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/logging"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
)

const kiaCSV = `Make,Model,Year,Colour,VIN
Kia,Rio,2021,Red,KNADM4A37F6400001
Kia,Rio,2021,red,KNADM4A37F6400002
`

const titleCSV = `Listing Title,Year,Colour,VIN
Toyota Land Cruiser GXR,2021,White,JTMHV01J123456789
Nissan Patrol LE,2020,Black,JN8AY2NY0L9000001
`

// setup points the package globals at a fresh config and returns a writable
// input file.
func setup(t *testing.T, content string) (dir, input string) {
	t.Helper()
	color.NoColor = true

	dir = t.TempDir()
	input = filepath.Join(dir, "stock.csv")
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.OutputFormat = config.FormatJSON
	appConfig = cfg
	logger = logging.Nop()

	importOpts = importFlags{workers: 2}
	previewOpts = importFlags{}
	previewLimit = 10
	detectMapping, detectSaveMapping, detectSheet, detectApply = "", "", "", false
	return dir, input
}

func TestPipelineOptions(t *testing.T) {
	opts, err := pipelineOptions(importFlags{
		filters: []string{"make=Kia", "year = 2021"},
		exclude: []string{"kia_rio_2021_red"},
		dryRun:  true,
	}, schema.Default())
	require.NoError(t, err)

	assert.Equal(t, "Kia", opts.Criteria[schema.Make])
	assert.Equal(t, "2021", opts.Criteria[schema.Year])
	assert.Equal(t, []string{"kia_rio_2021_red"}, opts.Exclude)
	assert.True(t, opts.ApplySuggestions)
	assert.True(t, opts.DryRun)

	_, err = pipelineOptions(importFlags{filters: []string{"wheels=4"}}, schema.Default())
	assert.ErrorContains(t, err, "wheels=4")
}

func TestFieldList(t *testing.T) {
	registry := schema.Default()
	assert.Equal(t, "Make/Brand, Model", fieldList(registry, []schema.FieldKey{schema.Make, schema.Model}))
	assert.Equal(t, "unknown", fieldList(registry, []schema.FieldKey{"unknown"}))

	// Labels come from the registry passed in.
	custom := schema.NewRegistry([]schema.Field{
		{Key: schema.Make, Label: "Manufacturer", Group: schema.GroupGrouping, Required: true},
	}, nil)
	assert.Equal(t, "Manufacturer, model", fieldList(custom, []schema.FieldKey{schema.Make, schema.Model}))
}

func TestTargetLabel(t *testing.T) {
	registry := schema.Default()
	assert.Equal(t, "Year", targetLabel(registry, schema.Year))
	assert.Contains(t, targetLabel(registry, schema.CombinedMakeModelVariant), "(combined)")
}

func TestRunImport(t *testing.T) {
	dir, input := setup(t, kiaCSV)

	var out bytes.Buffer
	require.NoError(t, runImport(NewUI(&out), []string{input}))

	assert.Contains(t, out.String(), "1 listings, 2 vehicles")
	assert.Contains(t, out.String(), "Successful:      1")

	matches, err := filepath.Glob(filepath.Join(dir, "out", "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunImport_IncompleteMapping(t *testing.T) {
	_, input := setup(t, titleCSV)
	importOpts.noSuggest = true

	var out bytes.Buffer
	err := runImport(NewUI(&out), []string{input})
	require.Error(t, err)

	assert.Contains(t, out.String(), "required fields are not mapped: Make/Brand, Model")
	assert.Contains(t, out.String(), "--allow-missing")
	assert.Contains(t, out.String(), "Errors:          1")
}

func TestRunImport_SaveMappingNeedsSingleFile(t *testing.T) {
	dir, input := setup(t, kiaCSV)
	second := filepath.Join(dir, "more.csv")
	require.NoError(t, os.WriteFile(second, []byte(kiaCSV), 0o644))
	importOpts.saveMapping = filepath.Join(dir, "mapping.yaml")

	err := runImport(NewUI(&bytes.Buffer{}), []string{input, second})
	assert.ErrorContains(t, err, "single input file")
}

func TestRunDetect(t *testing.T) {
	dir, input := setup(t, titleCSV)
	detectSaveMapping = filepath.Join(dir, "mapping.yaml")

	var out bytes.Buffer
	err := runDetect(NewUI(&out), input)
	assert.ErrorContains(t, err, "incomplete")

	text := out.String()
	assert.Contains(t, text, "stock.csv: 4 columns, 2 rows")
	assert.Contains(t, text, "(not mapped)")
	assert.Contains(t, text, "Combined make/model columns")
	assert.Contains(t, text, "Toyota, Nissan")
	assert.Contains(t, text, "suggested:")
	assert.FileExists(t, detectSaveMapping)
}

func TestRunDetect_Apply(t *testing.T) {
	_, input := setup(t, titleCSV)
	detectApply = true

	var out bytes.Buffer
	// Combined targets do not count towards make and model.
	assert.Error(t, runDetect(NewUI(&out), input))
	assert.Contains(t, out.String(), "mapped to")
}

func TestRunPreview(t *testing.T) {
	dir, input := setup(t, kiaCSV)

	var out bytes.Buffer
	require.NoError(t, runPreview(NewUI(&out), input))

	text := out.String()
	assert.Contains(t, text, "kia_rio_2021_red  x2")
	assert.Contains(t, text, "Vehicles:            2")
	assert.Contains(t, text, "Kia")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
	assert.FileExists(t, input)
}

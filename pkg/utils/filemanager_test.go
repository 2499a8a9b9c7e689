package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/validation"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "a.xlsx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.csv"))
	single := filepath.Join(t.TempDir(), "single.txt")
	touch(t, single)

	files, err := DiscoverInputFiles([]string{
		dir,
		filepath.Join(dir, "*.csv"),
		single,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.csv"),
		single,
	}, files)
}

func TestDiscoverInputFiles_NoMatch(t *testing.T) {
	_, err := DiscoverInputFiles([]string{filepath.Join(t.TempDir(), "*.csv")})
	assert.Error(t, err)
}

func TestIsInputFile(t *testing.T) {
	assert.True(t, IsInputFile("stock.CSV"))
	assert.True(t, IsInputFile("stock.xlsm"))
	assert.False(t, IsInputFile("stock.xls"))
}

func TestArchiveInputFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "stock.csv")
	touch(t, src)
	archive := filepath.Join(t.TempDir(), "archive")

	fm := NewFileManager(t.TempDir(), archive)
	fm.UseTimestampSubdirs = true

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, filepath.Join(archive, now.Format("2006"), now.Format("01"), now.Format("02"), "stock.csv"), archived)
	assert.True(t, FileExists(archived))
	assert.False(t, FileExists(src))
}

func TestArchiveInputFile_Disabled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "stock.csv")
	touch(t, src)

	archived, err := NewFileManager(t.TempDir(), "").ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.True(t, FileExists(src))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "out"), filepath.Join(root, "archive"))
	require.NoError(t, fm.EnsureDirectories())
	assert.DirExists(t, fm.OutputDir)
	assert.DirExists(t, fm.ArchiveDir)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{source}_{timestamp}", ".xml", map[string]string{"source": "stock"})
	assert.Regexp(t, regexp.MustCompile(`^stock_\d{8}_\d{6}\.xml$`), name)

	name = GenerateOutputFileName("listings_{uuid}.JSON", ".json", nil)
	assert.Regexp(t, regexp.MustCompile(`^listings_[0-9a-f-]{36}\.JSON$`), name)
}

func TestReserveOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	fm := NewFileManager(out, "")

	first, err := fm.ReserveOutputFile("stock_20240115_143022.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "stock_20240115_143022.xml"), first)
	assert.FileExists(t, first)

	second, err := fm.ReserveOutputFile("stock_20240115_143022.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "stock_20240115_143022_1.xml"), second)
}

func TestReserveOutputFile_Concurrent(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")

	paths := make([]string, 10)
	var wg sync.WaitGroup
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := fm.ReserveOutputFile("stock.json")
			assert.NoError(t, err)
			paths[i] = path
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, 10)
}

func TestSourceNameAndSummaryPath(t *testing.T) {
	assert.Equal(t, "stock", SourceName("/data/in/stock.xlsx"))
	assert.Equal(t, filepath.Join("out", "stock_1.summary.yaml"), SummaryPath(filepath.Join("out", "stock_1.xml")))
	assert.Equal(t, filepath.Join("out", "stock_1.issues.log"), IssuesPath(filepath.Join("out", "stock_1.xml")))
}

func TestWriteSummary(t *testing.T) {
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	summary := &RunSummary{
		ImportID:     "import-1",
		Source:       "stock.csv",
		OutputFormat: "xml",
		StartTime:    start,
		EndTime:      start.Add(1500 * time.Millisecond),
		Rows:         3,
		Mapping:      map[string]string{"Brand": "make"},
		Stats:        listing.Summary{TotalListings: 2, TotalVehicles: 3, AvgVehiclesPerListing: 1.5, UniqueMakes: 2},
		Issues: []*validation.ValidationError{
			{Severity: validation.SeverityWarning, Field: "vin", Rule: validation.RuleVINLength, RowNumber: 2},
		},
	}

	path := filepath.Join(t.TempDir(), "run", "stock.summary.yaml")
	require.NoError(t, WriteSummary(summary, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "import-1", decoded["import_id"])
	assert.Equal(t, "1.5s", decoded["duration"])
	assert.NotContains(t, decoded, "sheet")

	stats, ok := decoded["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, stats["total_vehicles"])
}
